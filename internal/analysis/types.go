// Package analysis defines the resume-analysis result produced by the Job Sync
// backend and the parser for its job_analysis markdown block.
package analysis

import "strings"

// MatchedJob is one job opportunity matched against the uploaded resume.
type MatchedJob struct {
	Domain          string  `json:"domain"`
	Similarity      float64 `json:"similarity"`
	ApplicationLink string  `json:"application_link,omitempty"`
	Description     string  `json:"description,omitempty"`
}

// Title returns a display title for the matched job.
func (j MatchedJob) Title() string {
	if title := strings.TrimSpace(j.Domain); title != "" {
		return title
	}
	return "Job Opportunity"
}

// Result is the analysis payload returned by the backend's analyze endpoint.
// JobAnalysis, when present, is a constrained markdown dialect headed by
// "### Job <n>: <title>" sections; see ParseJobAnalyses.
type Result struct {
	Skills            []string     `json:"skills"`
	YearsOfExperience *float64     `json:"years_of_experience,omitempty"`
	Education         string       `json:"education,omitempty"`
	MissingKeywords   []string     `json:"missing_keywords,omitempty"`
	Suggestions       []string     `json:"suggestions,omitempty"`
	MatchedJobs       []MatchedJob `json:"matched_jobs,omitempty"`
	JobAnalysis       string       `json:"job_analysis,omitempty"`
}

// MatchLevel is the coarse High/Moderate/Low classification derived from a
// job's match-assessment sentence.
type MatchLevel string

const (
	MatchHigh     MatchLevel = "High"
	MatchModerate MatchLevel = "Moderate"
	MatchLow      MatchLevel = "Low"
)

// JobAnalysis is one "### Job" section extracted from Result.JobAnalysis.
// Entries are derived purely from that field and are never mutated
// independently of it.
type JobAnalysis struct {
	Number              int
	Title               string
	Assessment          string
	MatchLevel          MatchLevel
	MatchingSkills      []string
	MissingSkills       []string
	RecommendedLearning []string
}
