package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	jobMarker            = "### Job"
	assessmentHeader     = "#### Match Assessment"
	matchingSkillsHeader = "#### Key Matching Skills"
	missingSkillsHeader  = "#### Missing Skills"
	learningHeader       = "#### Recommended Learning"

	placeholderTitle = "Job Opportunity"
)

var jobHeadingPattern = regexp.MustCompile(`^\s*(\d+):\s*(.+)`)

// ParseJobAnalyses extracts one JobAnalysis per "### Job" section of the
// backend's job_analysis text. Input with no job marker yields an empty
// slice, never an error; callers fall back to the raw matched-jobs summary.
func ParseJobAnalyses(text string) []JobAnalysis {
	segments := strings.Split(text, jobMarker)
	if len(segments) < 2 {
		return nil
	}
	// The first segment precedes any job heading and carries no section.
	jobs := make([]JobAnalysis, 0, len(segments)-1)
	for i, segment := range segments[1:] {
		jobs = append(jobs, parseJobSegment(segment, i+1))
	}
	return jobs
}

func parseJobSegment(segment string, ordinal int) JobAnalysis {
	job := JobAnalysis{
		Number: ordinal,
		Title:  placeholderTitle,
	}
	heading := firstLine(segment)
	if m := jobHeadingPattern.FindStringSubmatch(heading); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			job.Number = n
		}
		job.Title = strings.TrimSpace(m[2])
	}
	job.Assessment = firstLine(sectionText(segment, assessmentHeader))
	job.MatchLevel = classifyAssessment(job.Assessment)
	job.MatchingSkills = bulletItems(sectionText(segment, matchingSkillsHeader))
	job.MissingSkills = bulletItems(sectionText(segment, missingSkillsHeader))
	job.RecommendedLearning = bulletItems(sectionText(segment, learningHeader))
	return job
}

// classifyAssessment maps an assessment sentence to a coarse match level via
// case-sensitive substring tests, first match wins. Crude on purpose: the
// backend phrases assessments as "matches well" / "not well" / "moderately".
func classifyAssessment(assessment string) MatchLevel {
	switch {
	case strings.Contains(assessment, "well") && !strings.Contains(assessment, "not"):
		return MatchHigh
	case strings.Contains(assessment, "moderately"):
		return MatchModerate
	default:
		return MatchLow
	}
}

// sectionText returns the text following header up to the next "####" or the
// end of the segment. Missing header yields "".
func sectionText(segment, header string) string {
	idx := strings.Index(segment, header)
	if idx < 0 {
		return ""
	}
	rest := segment[idx+len(header):]
	if next := strings.Index(rest, "####"); next >= 0 {
		rest = rest[:next]
	}
	return rest
}

// bulletItems splits section text on the "*" bullet delimiter, trims each
// item, and discards empties. A header with no bullets yields an empty list.
func bulletItems(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, "*")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
