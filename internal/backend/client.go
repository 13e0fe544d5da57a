// Package backend talks to the resume-analysis service: multipart resume
// uploads and analysis retrieval.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jobsyncai/jobsync/internal/analysis"
)

const (
	// DefaultUploadEndpoint is where resumes are posted.
	DefaultUploadEndpoint = "http://localhost:8000/upload_resume/"
	// DefaultAnalyzeEndpoint returns the analysis for an uploaded resume.
	DefaultAnalyzeEndpoint = "http://localhost:8000/analyze-resume/"
)

// ErrNoResumeID indicates the upload response did not identify the stored
// resume, so a follow-up analysis cannot be requested.
var ErrNoResumeID = errors.New("upload response carried no resume id")

// Config holds the analysis-service endpoints.
type Config struct {
	UploadEndpoint  string
	AnalyzeEndpoint string
}

// Client is the HTTP gateway to the analysis service.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client. A nil httpClient falls back to a default one.
func NewClient(log *slog.Logger, cfg Config, httpClient *http.Client) *Client {
	if log == nil {
		log = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if strings.TrimSpace(cfg.UploadEndpoint) == "" {
		cfg.UploadEndpoint = DefaultUploadEndpoint
	}
	if strings.TrimSpace(cfg.AnalyzeEndpoint) == "" {
		cfg.AnalyzeEndpoint = DefaultAnalyzeEndpoint
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: log.With(slog.String("adapter", "backend")),
	}
}

type uploadResponse struct {
	Message  string `json:"message"`
	ResumeID *int64 `json:"resume_id"`
}

// Upload posts the resume bytes as a multipart form and returns the stored
// resume's ID for the follow-up Analyze call.
func (c *Client) Upload(ctx context.Context, filename, mimeType string, data []byte) (int64, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("resume payload is empty")
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = "resume.pdf"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return 0, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return 0, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.UploadEndpoint, &body)
	if err != nil {
		return 0, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("upload resume: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		snippet := readSnippet(resp.Body)
		c.logger.Error("resume upload rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("body", snippet),
		)
		return 0, fmt.Errorf("upload resume status %d", resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode upload response: %w", err)
	}
	if parsed.ResumeID == nil {
		return 0, ErrNoResumeID
	}
	c.logger.Info("resume uploaded",
		slog.String("filename", filename),
		slog.String("mime_type", mimeType),
		slog.Int64("resume_id", *parsed.ResumeID),
	)
	return *parsed.ResumeID, nil
}

// Analyze fetches the analysis for a previously uploaded resume.
func (c *Client) Analyze(ctx context.Context, resumeID int64) (*analysis.Result, error) {
	endpoint, err := url.Parse(c.cfg.AnalyzeEndpoint)
	if err != nil {
		return nil, fmt.Errorf("parse analyze endpoint: %w", err)
	}
	query := endpoint.Query()
	query.Set("resume_id", strconv.FormatInt(resumeID, 10))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build analyze request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyze resume: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		snippet := readSnippet(resp.Body)
		c.logger.Error("resume analysis failed",
			slog.Int64("resume_id", resumeID),
			slog.Int("status", resp.StatusCode),
			slog.String("body", snippet),
		)
		return nil, fmt.Errorf("analyze resume status %d", resp.StatusCode)
	}

	var result analysis.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &result, nil
}

func readSnippet(reader io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(reader, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
