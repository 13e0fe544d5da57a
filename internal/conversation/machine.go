// Package conversation implements the chat flow: a transition table over
// session states and normalized text commands, the reply copy, and the
// service that wires sessions, media download, and the analysis backend
// together.
package conversation

import (
	"strings"

	"github.com/jobsyncai/jobsync/internal/session"
)

// Token is the normalized command a raw text input collapses to before the
// transition table is consulted.
type Token string

const (
	TokenGreet   Token = "greet"
	TokenYes     Token = "yes"
	TokenNo      Token = "no"
	TokenJobs    Token = "jobs"
	TokenRestart Token = "restart"
	TokenOther   Token = "other"
)

// ReplyKind names the reply the service renders for a transition. The table
// decides the kind; the copy lives in messages.go.
type ReplyKind string

const (
	ReplyWelcome      ReplyKind = "welcome"
	ReplySayHi        ReplyKind = "say_hi"
	ReplyUploadPrompt ReplyKind = "upload_prompt"
	ReplyGoodbye      ReplyKind = "goodbye"
	ReplyConfirm      ReplyKind = "confirm_reprompt"
	ReplyAwaitingFile ReplyKind = "awaiting_file"
	ReplyJobs         ReplyKind = "job_breakdown"
	ReplyAnalysisGone ReplyKind = "analysis_gone"
	ReplyMenu         ReplyKind = "menu"
)

// Transition is the outcome of one text input: the next state, the reply to
// render, and whether the retained analysis must be dropped.
type Transition struct {
	Next          session.State
	Reply         ReplyKind
	ClearAnalysis bool
}

// Normalize collapses raw text to a command token. Matching is
// case-insensitive on the trimmed input with trailing punctuation stripped.
func Normalize(input string) Token {
	t := strings.ToLower(strings.TrimSpace(input))
	t = strings.TrimRight(t, ".!?,")
	t = strings.TrimSpace(t)
	switch t {
	case "hi", "hello", "hey", "start":
		return TokenGreet
	case "yes", "y", "yeah", "yep", "sure", "ok", "okay":
		return TokenYes
	case "no", "n", "nope", "not now":
		return TokenNo
	case "jobs", "job", "matches":
		return TokenJobs
	case "analyze new", "another", "new resume":
		return TokenRestart
	default:
		return TokenOther
	}
}

type transitionKey struct {
	state session.State
	token Token
}

// transitions is the (state, token) table. A greeting is handled before the
// table is consulted and wins in every state.
var transitions = map[transitionKey]Transition{
	{session.StateNew, TokenOther}: {Next: session.StateNew, Reply: ReplySayHi},

	{session.StateAwaitingConfirmation, TokenYes}:   {Next: session.StateAwaitingResume, Reply: ReplyUploadPrompt},
	{session.StateAwaitingConfirmation, TokenNo}:    {Next: session.StateNew, Reply: ReplyGoodbye},
	{session.StateAwaitingConfirmation, TokenOther}: {Next: session.StateAwaitingConfirmation, Reply: ReplyConfirm},

	{session.StateAwaitingResume, TokenOther}: {Next: session.StateAwaitingResume, Reply: ReplyAwaitingFile},

	{session.StateAnalysisComplete, TokenJobs}:    {Next: session.StateAnalysisComplete, Reply: ReplyJobs},
	{session.StateAnalysisComplete, TokenYes}:     {Next: session.StateAwaitingConfirmation, Reply: ReplyWelcome, ClearAnalysis: true},
	{session.StateAnalysisComplete, TokenRestart}: {Next: session.StateAwaitingConfirmation, Reply: ReplyWelcome, ClearAnalysis: true},
	{session.StateAnalysisComplete, TokenOther}:   {Next: session.StateAnalysisComplete, Reply: ReplyMenu},
}

// Advance computes the transition for a text input. It is a pure function of
// (state, input, hasAnalysis): the only hidden dependency is whether the
// session still holds an analysis, which decides the "jobs" outcome in the
// complete state.
func Advance(state session.State, input string, hasAnalysis bool) Transition {
	token := Normalize(input)
	if token == TokenGreet {
		return Transition{
			Next:          session.StateAwaitingConfirmation,
			Reply:         ReplyWelcome,
			ClearAnalysis: state == session.StateAnalysisComplete,
		}
	}

	tr, ok := transitions[transitionKey{state, token}]
	if !ok {
		// Unmapped tokens fall through to the state's catch-all row.
		tr, ok = transitions[transitionKey{state, TokenOther}]
		if !ok {
			return Transition{Next: session.StateNew, Reply: ReplySayHi}
		}
	}

	if tr.Reply == ReplyJobs && !hasAnalysis {
		return Transition{Next: session.StateNew, Reply: ReplyAnalysisGone, ClearAnalysis: true}
	}
	return tr
}
