package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jobsyncai/jobsync/internal/analysis"
)

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	got := FormatSummary(sampleResult())
	assert.Contains(t, got, "Resume Analysis Complete")
	assert.Contains(t, got, "Go, SQL")
	assert.Contains(t, got, "*Experience:* 4 years")
	assert.Contains(t, got, "Backend Engineer")
	assert.Contains(t, got, "82% match")
	assert.Contains(t, got, "https://jobs.example/1")
	assert.Contains(t, got, msgClosingPrompt)
}

func TestFormatSummaryOmitsEmptySections(t *testing.T) {
	t.Parallel()

	got := FormatSummary(&analysis.Result{Skills: []string{"Go"}})
	assert.Contains(t, got, "Go")
	assert.NotContains(t, got, "Experience")
	assert.NotContains(t, got, "Education")
	assert.NotContains(t, got, "Matched Jobs")
}

func TestFormatJobBreakdown(t *testing.T) {
	t.Parallel()

	got := FormatJobBreakdown(sampleResult())
	assert.Contains(t, got, "Detailed Job Breakdown (1 jobs)")
	assert.Contains(t, got, "*1. Backend Engineer*")
	assert.Contains(t, got, "Match: *High*")
	assert.Contains(t, got, "• Go")
	assert.Contains(t, got, "• Kubernetes")
	assert.Contains(t, got, "• CKA course")
}

func TestFormatJobBreakdownFallsBackToMatchedJobs(t *testing.T) {
	t.Parallel()

	result := sampleResult()
	result.JobAnalysis = "no job sections here"

	got := FormatJobBreakdown(result)
	assert.Contains(t, got, "Your Job Matches (1)")
	assert.Contains(t, got, "Backend Engineer")
}

func TestFormatJobBreakdownNothingToShow(t *testing.T) {
	t.Parallel()

	got := FormatJobBreakdown(&analysis.Result{})
	assert.Contains(t, got, "don't have job details")
}
