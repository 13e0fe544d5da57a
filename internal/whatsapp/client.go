package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultGraphBaseURL is the Facebook Graph API host.
	DefaultGraphBaseURL = "https://graph.facebook.com"
	// DefaultAPIVersion is the pinned Graph API version.
	DefaultAPIVersion = "v18.0"
	// MaxMediaBytes caps how large an attachment download may be.
	MaxMediaBytes int64 = 25 * 1024 * 1024
	// sendPartDelay spaces consecutive part sends to respect provider
	// rate limits.
	sendPartDelay = 500 * time.Millisecond
)

// ErrMediaTooLarge indicates an attachment exceeds MaxMediaBytes.
var ErrMediaTooLarge = errors.New("whatsapp media too large")

// Config holds the Cloud API credentials and endpoints.
type Config struct {
	AccessToken   string
	PhoneNumberID string
	GraphBaseURL  string
	APIVersion    string
}

// Client sends messages and fetches media through the WhatsApp Cloud API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
	delay  time.Duration
}

// NewClient creates a Client. A nil httpClient falls back to a default one;
// outbound calls carry no deadline of their own and rely on ctx.
func NewClient(log *slog.Logger, cfg Config, httpClient *http.Client) *Client {
	if log == nil {
		log = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if strings.TrimSpace(cfg.GraphBaseURL) == "" {
		cfg.GraphBaseURL = DefaultGraphBaseURL
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: log.With(slog.String("adapter", "whatsapp")),
		delay:  sendPartDelay,
	}
}

type textPayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// SendText delivers one text message to the given phone number.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("whatsapp recipient is required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("message body is required")
	}
	payload := textPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
	}
	payload.Text.Body = text

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode send payload: %w", err)
	}
	url := fmt.Sprintf("%s/%s/%s/messages", c.cfg.GraphBaseURL, c.cfg.APIVersion, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("send message failed", slog.String("to", to), slog.Any("error", err))
		return fmt.Errorf("send message: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := readSnippet(resp.Body)
		c.logger.Error("send message rejected",
			slog.String("to", to),
			slog.Int("status", resp.StatusCode),
			slog.String("body", snippet),
		)
		return fmt.Errorf("send message status %d", resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// SendParts splits text on MaxMessageLength and sends the parts in order,
// pausing briefly between sends. The first failed part stops the sequence
// and the error is returned; the caller decides whether to notify the user.
func (c *Client) SendParts(ctx context.Context, to, text string) error {
	parts := SplitMessage(text, MaxMessageLength)
	for i, part := range parts {
		if i > 0 && c.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.delay):
			}
		}
		if err := c.SendText(ctx, to, part); err != nil {
			return fmt.Errorf("send part %d/%d: %w", i+1, len(parts), err)
		}
	}
	return nil
}

type mediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
	ID       string `json:"id"`
}

// DownloadMedia exchanges a media ID for its short-lived download URL and
// fetches the raw bytes. Returns the bytes and the reported MIME type.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	mediaID = strings.TrimSpace(mediaID)
	if mediaID == "" {
		return nil, "", fmt.Errorf("media id is required")
	}
	info, err := c.resolveMedia(ctx, mediaID)
	if err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build media download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download media: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, "", fmt.Errorf("download media status %d", resp.StatusCode)
	}
	data, err := readAllWithLimit(resp.Body, MaxMediaBytes)
	if err != nil {
		return nil, "", err
	}
	mime := strings.TrimSpace(info.MimeType)
	if mime == "" {
		mime = strings.TrimSpace(resp.Header.Get("Content-Type"))
		if idx := strings.Index(mime, ";"); idx >= 0 {
			mime = strings.TrimSpace(mime[:idx])
		}
	}
	return data, mime, nil
}

func (c *Client) resolveMedia(ctx context.Context, mediaID string) (mediaInfo, error) {
	url := fmt.Sprintf("%s/%s/%s", c.cfg.GraphBaseURL, c.cfg.APIVersion, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return mediaInfo{}, fmt.Errorf("build media lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return mediaInfo{}, fmt.Errorf("resolve media: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return mediaInfo{}, fmt.Errorf("resolve media status %d", resp.StatusCode)
	}
	var info mediaInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return mediaInfo{}, fmt.Errorf("decode media lookup: %w", err)
	}
	if strings.TrimSpace(info.URL) == "" {
		return mediaInfo{}, fmt.Errorf("media lookup returned no url")
	}
	return info, nil
}

func readAllWithLimit(reader io.Reader, maxBytes int64) ([]byte, error) {
	limited := &io.LimitedReader{R: reader, N: maxBytes + 1}
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read media body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: max %d bytes", ErrMediaTooLarge, maxBytes)
	}
	return data, nil
}

func readSnippet(reader io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(reader, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
