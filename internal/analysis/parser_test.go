package analysis

import (
	"strings"
	"testing"
)

const twoJobAnalysis = "### Job 1: A\n" +
	"#### Match Assessment\n" +
	"matches well\n" +
	"#### Key Matching Skills\n" +
	"* X\n" +
	"#### Missing Skills\n" +
	"* Y\n" +
	"#### Recommended Learning\n" +
	"* Z\n" +
	"### Job 2: B\n" +
	"#### Match Assessment\n" +
	"not well\n" +
	"#### Key Matching Skills\n" +
	"* P\n" +
	"#### Missing Skills\n" +
	"* Q\n" +
	"#### Recommended Learning\n" +
	"* R\n"

func TestParseJobAnalysesNoMarker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "plain prose", text: "You match several roles in data engineering."},
		{name: "wrong heading level", text: "## Job 1: A\n#### Match Assessment\nwell"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseJobAnalyses(tt.text); len(got) != 0 {
				t.Fatalf("expected empty result, got %d entries", len(got))
			}
		})
	}
}

func TestParseJobAnalysesTwoJobs(t *testing.T) {
	t.Parallel()

	jobs := ParseJobAnalyses(twoJobAnalysis)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	first := jobs[0]
	if first.Number != 1 || first.Title != "A" {
		t.Fatalf("unexpected first heading: %d %q", first.Number, first.Title)
	}
	if first.MatchLevel != MatchHigh {
		t.Fatalf("unexpected first match level: %s", first.MatchLevel)
	}
	if len(first.MatchingSkills) != 1 || first.MatchingSkills[0] != "X" {
		t.Fatalf("unexpected matching skills: %v", first.MatchingSkills)
	}
	if len(first.MissingSkills) != 1 || first.MissingSkills[0] != "Y" {
		t.Fatalf("unexpected missing skills: %v", first.MissingSkills)
	}
	if len(first.RecommendedLearning) != 1 || first.RecommendedLearning[0] != "Z" {
		t.Fatalf("unexpected learning items: %v", first.RecommendedLearning)
	}

	second := jobs[1]
	if second.Number != 2 || second.Title != "B" {
		t.Fatalf("unexpected second heading: %d %q", second.Number, second.Title)
	}
	if second.MatchLevel != MatchLow {
		t.Fatalf("unexpected second match level: %s", second.MatchLevel)
	}
	// Sections must not leak across jobs.
	if second.MatchingSkills[0] != "P" || second.MissingSkills[0] != "Q" || second.RecommendedLearning[0] != "R" {
		t.Fatalf("section leakage: %v %v %v", second.MatchingSkills, second.MissingSkills, second.RecommendedLearning)
	}
}

func TestParseJobAnalysesHeadingFallback(t *testing.T) {
	t.Parallel()

	jobs := ParseJobAnalyses("### Job\n#### Match Assessment\nmoderately aligned\n")
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Number != 1 {
		t.Fatalf("expected ordinal fallback 1, got %d", jobs[0].Number)
	}
	if jobs[0].Title != placeholderTitle {
		t.Fatalf("expected placeholder title, got %q", jobs[0].Title)
	}
	if jobs[0].MatchLevel != MatchModerate {
		t.Fatalf("expected Moderate, got %s", jobs[0].MatchLevel)
	}
}

func TestParseJobAnalysesEmptySections(t *testing.T) {
	t.Parallel()

	jobs := ParseJobAnalyses("### Job 3: C\n#### Match Assessment\n\n#### Key Matching Skills\n#### Missing Skills\n* \n#### Recommended Learning\n")
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	job := jobs[0]
	if job.Number != 3 || job.Title != "C" {
		t.Fatalf("unexpected heading: %d %q", job.Number, job.Title)
	}
	if len(job.MatchingSkills) != 0 || len(job.MissingSkills) != 0 || len(job.RecommendedLearning) != 0 {
		t.Fatalf("expected empty sections, got %v %v %v", job.MatchingSkills, job.MissingSkills, job.RecommendedLearning)
	}
	if job.MatchLevel != MatchLow {
		t.Fatalf("expected Low for empty assessment, got %s", job.MatchLevel)
	}
}

func TestClassifyAssessment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		assessment string
		want       MatchLevel
	}{
		{"matches well with your background", MatchHigh},
		{"does not match well", MatchLow},
		{"moderately suitable", MatchModerate},
		{"a weak fit", MatchLow},
		{"", MatchLow},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.assessment, func(t *testing.T) {
			t.Parallel()
			if got := classifyAssessment(tt.assessment); got != tt.want {
				t.Fatalf("classifyAssessment(%q) = %s, want %s", tt.assessment, got, tt.want)
			}
		})
	}
}

func TestParseJobAnalysesIsPure(t *testing.T) {
	t.Parallel()

	a := ParseJobAnalyses(twoJobAnalysis)
	b := ParseJobAnalyses(twoJobAnalysis)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic parse: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Title != b[i].Title || a[i].MatchLevel != b[i].MatchLevel ||
			strings.Join(a[i].MatchingSkills, ",") != strings.Join(b[i].MatchingSkills, ",") {
			t.Fatalf("non-deterministic entry %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}
