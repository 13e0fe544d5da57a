// Package session tracks per-phone-number conversational state across
// webhook calls.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/jobsyncai/jobsync/internal/analysis"
)

// ErrNotFound indicates no session exists for the given identifier.
var ErrNotFound = errors.New("session not found")

// State is the position of a conversation in the resume-analysis flow.
type State string

const (
	StateNew                  State = "new"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateAwaitingResume       State = "awaiting_resume"
	StateAnalysisComplete     State = "analysis_complete"
)

// Session is the conversational state for one external user identifier.
// LastAnalysis is retained only while State remains StateAnalysisComplete,
// to answer a follow-up "jobs" command without re-querying the backend.
type Session struct {
	Phone        string           `json:"phone"`
	State        State            `json:"state"`
	LastAnalysis *analysis.Result `json:"last_analysis,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Patch is a partial session update. Nil fields are left untouched;
// ClearAnalysis drops LastAnalysis regardless of the Analysis field.
type Patch struct {
	State         *State
	Analysis      *analysis.Result
	ClearAnalysis bool
}

// Store maps a phone-number identifier to its session record.
type Store interface {
	// Get returns the session for id, or ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)
	// GetOrCreate returns the session for id, creating one in StateNew if absent.
	GetOrCreate(ctx context.Context, id string) (Session, error)
	// Update applies patch to the session for id and returns the result.
	// Updating an absent id creates the session first.
	Update(ctx context.Context, id string, patch Patch) (Session, error)
}

func newSession(id string, now time.Time) Session {
	return Session{
		Phone:     id,
		State:     StateNew,
		UpdatedAt: now,
	}
}

func applyPatch(sess *Session, patch Patch, now time.Time) {
	if patch.State != nil {
		sess.State = *patch.State
	}
	if patch.ClearAnalysis {
		sess.LastAnalysis = nil
	} else if patch.Analysis != nil {
		sess.LastAnalysis = patch.Analysis
	}
	sess.UpdatedAt = now
}
