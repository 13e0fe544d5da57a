// Package whatsapp speaks the WhatsApp Business Cloud API: inbound webhook
// payload types, outbound text sends, and media retrieval via the Graph API.
package whatsapp

import "strings"

// WebhookPayload is the envelope WhatsApp POSTs to the webhook endpoint.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one business-account entry in a webhook delivery.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change is one field-scoped change inside an entry. Message deliveries
// arrive with Field == "messages".
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue carries the messages and contacts of a "messages" change.
type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts"`
	Messages         []Message `json:"messages"`
}

// Metadata identifies the receiving business phone number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the sender profile attached to a message delivery.
type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// Message is one inbound message. Exactly one of Text, Image, or Document is
// populated, according to Type.
type Message struct {
	From      string    `json:"from"`
	ID        string    `json:"id"`
	Timestamp string    `json:"timestamp"`
	Type      string    `json:"type"`
	Text      *Text     `json:"text,omitempty"`
	Image     *Media    `json:"image,omitempty"`
	Document  *Document `json:"document,omitempty"`
}

// Text is the body of a text message.
type Text struct {
	Body string `json:"body"`
}

// Media references an uploaded attachment by provider media ID.
type Media struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption,omitempty"`
	SHA256   string `json:"sha256,omitempty"`
}

// Document is a file attachment; unlike Media it carries a filename.
type Document struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Filename string `json:"filename,omitempty"`
	Caption  string `json:"caption,omitempty"`
	SHA256   string `json:"sha256,omitempty"`
}

// ContentKind tags the classified content of an inbound message.
type ContentKind string

const (
	ContentText        ContentKind = "text"
	ContentFile        ContentKind = "file"
	ContentUnsupported ContentKind = "unsupported"
)

// Content is the tagged variant an inbound message is classified into at the
// webhook boundary; the rest of the pipeline dispatches on Kind only.
type Content struct {
	Kind ContentKind
	// Text body, for ContentText.
	Text string
	// Attachment reference, for ContentFile.
	MediaID  string
	MimeType string
	Filename string
}

// Classify maps a raw inbound message to its tagged content variant.
// Images and documents both classify as files; anything else (audio, video,
// stickers, reactions, locations) is unsupported.
func Classify(msg Message) Content {
	switch msg.Type {
	case "text":
		if msg.Text == nil {
			return Content{Kind: ContentUnsupported}
		}
		return Content{Kind: ContentText, Text: strings.TrimSpace(msg.Text.Body)}
	case "image":
		if msg.Image == nil || strings.TrimSpace(msg.Image.ID) == "" {
			return Content{Kind: ContentUnsupported}
		}
		return Content{
			Kind:     ContentFile,
			MediaID:  msg.Image.ID,
			MimeType: msg.Image.MimeType,
			Filename: "resume.jpg",
		}
	case "document":
		if msg.Document == nil || strings.TrimSpace(msg.Document.ID) == "" {
			return Content{Kind: ContentUnsupported}
		}
		name := strings.TrimSpace(msg.Document.Filename)
		if name == "" {
			name = "resume.pdf"
		}
		return Content{
			Kind:     ContentFile,
			MediaID:  msg.Document.ID,
			MimeType: msg.Document.MimeType,
			Filename: name,
		}
	default:
		return Content{Kind: ContentUnsupported}
	}
}
