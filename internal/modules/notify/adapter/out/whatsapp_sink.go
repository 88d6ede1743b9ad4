package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shotwatch/internal/modules/notify/domain"
	apperrors "shotwatch/internal/platform/errors"
	"shotwatch/internal/platform/logging"
)

var log = logging.MustGetLogger("notify")

const (
	DefaultWhatsAppBaseURL = "https://graph.facebook.com/v21.0"
	messageTimeout         = 60 * time.Second
	uploadTimeout          = 120 * time.Second
	errorBodyLimit         = 500
	messagingProduct       = "whatsapp"
)

type WhatsAppOptions struct {
	BaseURL       string
	PhoneNumberID string
	Token         string
	To            string
}

// WhatsAppSink talks to the WhatsApp Cloud API. It implements both the Sink
// and Directory ports.
type WhatsAppSink struct {
	opts   WhatsAppOptions
	client *http.Client
	upload *http.Client
}

func NewWhatsAppSink(opts WhatsAppOptions, client *http.Client) (*WhatsAppSink, error) {
	var missing []string
	if strings.TrimSpace(opts.PhoneNumberID) == "" {
		missing = append(missing, "phone_number_id")
	}
	if strings.TrimSpace(opts.Token) == "" {
		missing = append(missing, "token")
	}
	if strings.TrimSpace(opts.To) == "" {
		missing = append(missing, "to")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: whatsapp %s", apperrors.ErrMissingCredentials, strings.Join(missing, ", "))
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultWhatsAppBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	sink := &WhatsAppSink{
		opts:   opts,
		client: &http.Client{Timeout: messageTimeout},
		upload: &http.Client{Timeout: uploadTimeout},
	}
	if client != nil {
		sink.client = client
		sink.upload = client
	}
	return sink, nil
}

type textBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type videoBody struct {
	ID      string `json:"id"`
	Caption string `json:"caption,omitempty"`
}

type outgoingMessage struct {
	MessagingProduct string     `json:"messaging_product"`
	To               string     `json:"to"`
	Type             string     `json:"type"`
	Text             *textBody  `json:"text,omitempty"`
	Video            *videoBody `json:"video,omitempty"`
}

func (s *WhatsAppSink) SendText(ctx context.Context, message string) error {
	return s.sendMessage(ctx, outgoingMessage{
		MessagingProduct: messagingProduct,
		To:               s.opts.To,
		Type:             "text",
		Text:             &textBody{Body: message},
	})
}

func (s *WhatsAppSink) SendVideo(ctx context.Context, handle, caption string) error {
	return s.sendMessage(ctx, outgoingMessage{
		MessagingProduct: messagingProduct,
		To:               s.opts.To,
		Type:             "video",
		Video:            &videoBody{ID: handle, Caption: caption},
	})
}

// UploadMedia posts the file as multipart form data and returns the media
// id assigned by the API.
func (s *WhatsAppSink) UploadMedia(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open media: %w", err)
	}
	defer f.Close()

	contentType := mediaType(path)
	buf := &bytes.Buffer{}
	form := multipart.NewWriter(buf)
	part, err := form.CreatePart(filePartHeader(filepath.Base(path), contentType))
	if err != nil {
		return "", fmt.Errorf("build media form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read media: %w", err)
	}
	if err := form.WriteField("type", contentType); err != nil {
		return "", err
	}
	if err := form.WriteField("messaging_product", messagingProduct); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := s.do(ctx, s.upload, http.MethodPost, "/media", form.FormDataContentType(), buf, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: media upload returned no id", apperrors.ErrUnexpectedResponse)
	}
	return out.ID, nil
}

// ListGroups reads the groups of the phone number. Group names arrive as
// either "subject" or "name".
func (s *WhatsAppSink) ListGroups(ctx context.Context) ([]domain.Group, error) {
	var out struct {
		Data []struct {
			ID      string `json:"id"`
			Subject string `json:"subject"`
			Name    string `json:"name"`
		} `json:"data"`
	}
	if err := s.do(ctx, s.client, http.MethodGet, "/groups", "", nil, &out); err != nil {
		return nil, err
	}
	groups := make([]domain.Group, 0, len(out.Data))
	for _, g := range out.Data {
		name := g.Subject
		if name == "" {
			name = g.Name
		}
		groups = append(groups, domain.Group{ID: g.ID, Name: name})
	}
	return groups, nil
}

func (s *WhatsAppSink) sendMessage(ctx context.Context, msg outgoingMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return s.do(ctx, s.client, http.MethodPost, "/messages", "application/json", bytes.NewReader(payload), nil)
}

func (s *WhatsAppSink) do(ctx context.Context, client *http.Client, method, path, contentType string, body io.Reader, out any) error {
	url := s.opts.BaseURL + "/" + s.opts.PhoneNumberID + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.opts.Token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp %s: %w", path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read whatsapp %s response: %w", path, err)
	}
	log.Debugf("whatsapp %s %s status=%d", method, path, resp.StatusCode)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: whatsapp %s status %d: %s", apperrors.ErrUnexpectedResponse, path, resp.StatusCode, truncate(raw, errorBodyLimit))
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode whatsapp %s response: %w", path, err)
	}
	return nil
}

func mediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".gif":
		return "image/gif"
	}
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func filePartHeader(name, contentType string) textproto.MIMEHeader {
	return textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, name)},
		"Content-Type":        {contentType},
	}
}

func truncate(raw []byte, limit int) string {
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
