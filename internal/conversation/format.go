package conversation

import (
	"fmt"
	"strings"

	"github.com/jobsyncai/jobsync/internal/analysis"
)

// Reply copy. Kept in one place so the transition table stays data-only.
const (
	msgWelcome = "👋 Welcome to Job Sync AI!\n\n" +
		"I can analyze your resume and match you with job opportunities.\n\n" +
		"Would you like to analyze your resume? (yes/no)"
	msgSayHi        = "Say *hi* to get started with your resume analysis! 👋"
	msgUploadPrompt = "Great! 📄 Please send me your resume as a PDF or image attachment."
	msgGoodbye      = "No problem! Say *hi* whenever you're ready to analyze your resume. 👋"
	msgConfirm      = "Please reply *yes* to analyze your resume, or *no* to skip."
	msgAwaitingFile = "I'm waiting for your resume 📄 — please send it as a PDF or image attachment."
	msgAnalysisGone = "Sorry, I no longer have your analysis on hand. 😕 Say *hi* to start a fresh one!"
	msgMenu         = "Here's what you can do:\n" +
		"• Reply *jobs* for a detailed job breakdown\n" +
		"• Send a new resume to run a fresh analysis\n" +
		"• Reply *yes* to start over"
	msgClosingPrompt = "Reply *jobs* for details on each match, or send a new resume anytime. 🚀"

	msgDownloading  = "📥 Got your resume! Downloading it now..."
	msgAnalyzing    = "🔍 Analyzing your resume... this can take a moment."
	msgFileRejected = "I can't take a file just yet — say *hi* first and I'll walk you through it. 🙂"
	msgUnsupported  = "I can only handle text messages and PDF/image resumes for now. 🙏"

	errDownload = "Sorry, I couldn't download your file. 😕 Please try sending it again."
	errUpload   = "Sorry, something went wrong while uploading your resume. 😕 Please try again."
	errAnalyze  = "Sorry, the analysis didn't come back. 😕 Please try sending your resume again."
)

// replyText renders static reply kinds. Dynamic kinds (ReplyJobs) are
// rendered by the service because they need the session's analysis.
func replyText(kind ReplyKind) string {
	switch kind {
	case ReplyWelcome:
		return msgWelcome
	case ReplySayHi:
		return msgSayHi
	case ReplyUploadPrompt:
		return msgUploadPrompt
	case ReplyGoodbye:
		return msgGoodbye
	case ReplyConfirm:
		return msgConfirm
	case ReplyAwaitingFile:
		return msgAwaitingFile
	case ReplyAnalysisGone:
		return msgAnalysisGone
	case ReplyMenu:
		return msgMenu
	default:
		return msgSayHi
	}
}

// FormatSummary renders the post-analysis summary message from a backend
// result.
func FormatSummary(result *analysis.Result) string {
	var b strings.Builder
	b.WriteString("✅ *Resume Analysis Complete!*\n")

	if len(result.Skills) > 0 {
		b.WriteString("\n🛠 *Skills:* ")
		b.WriteString(strings.Join(result.Skills, ", "))
		b.WriteString("\n")
	}
	if result.YearsOfExperience != nil {
		b.WriteString(fmt.Sprintf("\n💼 *Experience:* %s years\n", trimFloat(*result.YearsOfExperience)))
	}
	if edu := strings.TrimSpace(result.Education); edu != "" {
		b.WriteString("\n🎓 *Education:* ")
		b.WriteString(edu)
		b.WriteString("\n")
	}
	if len(result.MissingKeywords) > 0 {
		b.WriteString("\n🔎 *Missing Keywords:* ")
		b.WriteString(strings.Join(result.MissingKeywords, ", "))
		b.WriteString("\n")
	}
	if len(result.Suggestions) > 0 {
		b.WriteString("\n💡 *Suggestions:*\n")
		for _, s := range result.Suggestions {
			b.WriteString("• ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	if len(result.MatchedJobs) > 0 {
		b.WriteString(fmt.Sprintf("\n🎯 *Matched Jobs (%d):*\n", len(result.MatchedJobs)))
		for i, job := range result.MatchedJobs {
			b.WriteString(fmt.Sprintf("%d. *%s* — %.0f%% match\n", i+1, job.Title(), job.Similarity*100))
			if link := strings.TrimSpace(job.ApplicationLink); link != "" {
				b.WriteString("   Apply: ")
				b.WriteString(link)
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(msgClosingPrompt)
	return b.String()
}

// FormatJobBreakdown renders the detailed per-job view from the retained
// analysis. When the job_analysis block parses to zero jobs it falls back to
// the raw matched-jobs summary.
func FormatJobBreakdown(result *analysis.Result) string {
	jobs := analysis.ParseJobAnalyses(result.JobAnalysis)
	if len(jobs) == 0 {
		return formatMatchedJobsFallback(result)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 *Detailed Job Breakdown (%d jobs):*\n", len(jobs)))
	for _, job := range jobs {
		b.WriteString(fmt.Sprintf("\n*%d. %s*\n", job.Number, job.Title))
		b.WriteString(fmt.Sprintf("%s Match: *%s*\n", matchEmoji(job.MatchLevel), job.MatchLevel))
		if assessment := strings.TrimSpace(job.Assessment); assessment != "" {
			b.WriteString(assessment)
			b.WriteString("\n")
		}
		writeBullets(&b, "✅ Matching skills", job.MatchingSkills)
		writeBullets(&b, "❌ Missing skills", job.MissingSkills)
		writeBullets(&b, "📚 Recommended learning", job.RecommendedLearning)
	}
	return b.String()
}

func formatMatchedJobsFallback(result *analysis.Result) string {
	if len(result.MatchedJobs) == 0 {
		return "I don't have job details for this analysis. Try sending a new resume! 📄"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎯 *Your Job Matches (%d):*\n", len(result.MatchedJobs)))
	for i, job := range result.MatchedJobs {
		b.WriteString(fmt.Sprintf("\n%d. *%s* — %.0f%% match\n", i+1, job.Title(), job.Similarity*100))
		if desc := strings.TrimSpace(job.Description); desc != "" {
			b.WriteString(desc)
			b.WriteString("\n")
		}
		if link := strings.TrimSpace(job.ApplicationLink); link != "" {
			b.WriteString("Apply: ")
			b.WriteString(link)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeBullets(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(label)
	b.WriteString(":\n")
	for _, item := range items {
		b.WriteString("• ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}

func matchEmoji(level analysis.MatchLevel) string {
	switch level {
	case analysis.MatchHigh:
		return "🟢"
	case analysis.MatchModerate:
		return "🟡"
	default:
		return "🔴"
	}
}

// trimFloat drops a trailing ".0" so whole years read naturally.
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}
