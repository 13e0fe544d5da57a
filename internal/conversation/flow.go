package conversation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jobsyncai/jobsync/internal/analysis"
	"github.com/jobsyncai/jobsync/internal/session"
	"github.com/jobsyncai/jobsync/internal/whatsapp"
)

// Sender delivers outbound text to a chat user, splitting oversized text
// into ordered parts.
type Sender interface {
	SendParts(ctx context.Context, to, text string) error
}

// MediaFetcher resolves a provider media ID to raw bytes and a MIME type.
type MediaFetcher interface {
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error)
}

// AnalysisGateway uploads a resume to the analysis backend and retrieves the
// result for the returned resume ID.
type AnalysisGateway interface {
	Upload(ctx context.Context, filename, mimeType string, data []byte) (int64, error)
	Analyze(ctx context.Context, resumeID int64) (*analysis.Result, error)
}

// Service drives one user's conversation turn: it loads the session, applies
// the transition table or the file pipeline, persists the new state, and
// sends the replies.
type Service struct {
	store   session.Store
	sender  Sender
	media   MediaFetcher
	backend AnalysisGateway
	logger  *slog.Logger
}

// NewService creates the conversation service.
func NewService(log *slog.Logger, store session.Store, sender Sender, media MediaFetcher, backend AnalysisGateway) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:   store,
		sender:  sender,
		media:   media,
		backend: backend,
		logger:  log.With(slog.String("service", "conversation")),
	}
}

// HandleText processes one inbound text message from the given phone number.
func (s *Service) HandleText(ctx context.Context, phone, text string) error {
	sess, err := s.store.GetOrCreate(ctx, phone)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	tr := Advance(sess.State, text, sess.LastAnalysis != nil)
	s.logger.Info("text transition",
		slog.String("phone", phone),
		slog.String("from", string(sess.State)),
		slog.String("to", string(tr.Next)),
		slog.String("reply", string(tr.Reply)),
	)

	patch := session.Patch{State: &tr.Next, ClearAnalysis: tr.ClearAnalysis}
	if _, err := s.store.Update(ctx, phone, patch); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	if tr.Reply == ReplyJobs {
		return s.sendJobBreakdown(ctx, phone, sess.LastAnalysis)
	}
	return s.sender.SendParts(ctx, phone, replyText(tr.Reply))
}

// HandleFile processes one inbound attachment. Files are only accepted while
// the session awaits a resume or already holds a completed analysis; in any
// other state the file is turned away without touching the media gateway.
func (s *Service) HandleFile(ctx context.Context, phone string, content whatsapp.Content) error {
	sess, err := s.store.GetOrCreate(ctx, phone)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	switch sess.State {
	case session.StateAwaitingResume:
	case session.StateAnalysisComplete:
		// Drop the previous result before the new pipeline starts so a
		// concurrent "jobs" command cannot mix old and new analyses.
		if _, err := s.store.Update(ctx, phone, session.Patch{ClearAnalysis: true}); err != nil {
			return fmt.Errorf("clear stale analysis: %w", err)
		}
	default:
		s.logger.Info("file rejected",
			slog.String("phone", phone),
			slog.String("state", string(sess.State)),
		)
		return s.sender.SendParts(ctx, phone, msgFileRejected)
	}

	return s.runAnalysisPipeline(ctx, phone, content)
}

// HandleUnsupported replies to message types the flow cannot process.
func (s *Service) HandleUnsupported(ctx context.Context, phone string) error {
	if _, err := s.store.GetOrCreate(ctx, phone); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	return s.sender.SendParts(ctx, phone, msgUnsupported)
}

// runAnalysisPipeline executes download → upload → analyze. Each step fails
// independently: on failure the user gets exactly one error message and the
// session state is left as it was, so a retry needs no re-confirmation.
func (s *Service) runAnalysisPipeline(ctx context.Context, phone string, content whatsapp.Content) error {
	if err := s.sender.SendParts(ctx, phone, msgDownloading); err != nil {
		return fmt.Errorf("send downloading notice: %w", err)
	}

	data, mimeType, err := s.media.DownloadMedia(ctx, content.MediaID)
	if err != nil {
		s.logger.Error("media download failed", slog.String("phone", phone), slog.Any("error", err))
		return s.sender.SendParts(ctx, phone, errDownload)
	}
	if mimeType == "" {
		mimeType = content.MimeType
	}

	if err := s.sender.SendParts(ctx, phone, msgAnalyzing); err != nil {
		return fmt.Errorf("send analyzing notice: %w", err)
	}

	resumeID, err := s.backend.Upload(ctx, content.Filename, mimeType, data)
	if err != nil {
		s.logger.Error("resume upload failed", slog.String("phone", phone), slog.Any("error", err))
		return s.sender.SendParts(ctx, phone, errUpload)
	}

	result, err := s.backend.Analyze(ctx, resumeID)
	if err != nil || result == nil {
		s.logger.Error("resume analysis failed",
			slog.String("phone", phone),
			slog.Int64("resume_id", resumeID),
			slog.Any("error", err),
		)
		return s.sender.SendParts(ctx, phone, errAnalyze)
	}

	complete := session.StateAnalysisComplete
	if _, err := s.store.Update(ctx, phone, session.Patch{State: &complete, Analysis: result}); err != nil {
		return fmt.Errorf("persist analysis: %w", err)
	}
	s.logger.Info("analysis complete",
		slog.String("phone", phone),
		slog.Int64("resume_id", resumeID),
		slog.Int("matched_jobs", len(result.MatchedJobs)),
	)

	return s.sender.SendParts(ctx, phone, FormatSummary(result))
}

// sendJobBreakdown emits the detailed per-job view followed by one closing
// prompt message.
func (s *Service) sendJobBreakdown(ctx context.Context, phone string, result *analysis.Result) error {
	if err := s.sender.SendParts(ctx, phone, FormatJobBreakdown(result)); err != nil {
		return fmt.Errorf("send job breakdown: %w", err)
	}
	return s.sender.SendParts(ctx, phone, msgClosingPrompt)
}
