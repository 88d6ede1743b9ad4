package out

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "shotwatch/internal/platform/errors"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]any
	form   map[string]string
	file   string
}

func newWhatsAppServer(t *testing.T, uploadStatus int) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	requests := []recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		switch r.URL.Path {
		case "/PHONE/messages":
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
			_, _ = io.WriteString(w, `{"messages":[{"id":"wamid.1"}]}`)
		case "/PHONE/media":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse upload form: %v", err)
			}
			rec.form = map[string]string{"type": r.FormValue("type"), "messaging_product": r.FormValue("messaging_product")}
			if f, hdr, err := r.FormFile("file"); err == nil {
				rec.file = hdr.Filename
				f.Close()
			}
			w.WriteHeader(uploadStatus)
			if uploadStatus == http.StatusOK {
				_, _ = io.WriteString(w, `{"id":"MEDIA42"}`)
			} else {
				_, _ = io.WriteString(w, `{"error":{"message":"too large"}}`)
			}
		case "/PHONE/groups":
			_, _ = io.WriteString(w, `{"data":[{"id":"g1","subject":"Design team"},{"id":"g2","name":"Ops"}]}`)
		default:
			http.NotFound(w, r)
		}
		mu.Lock()
		requests = append(requests, rec)
		mu.Unlock()
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestSink(t *testing.T, srv *httptest.Server) *WhatsAppSink {
	t.Helper()
	sink, err := NewWhatsAppSink(WhatsAppOptions{BaseURL: srv.URL, PhoneNumberID: "PHONE", Token: "tok", To: "923001234567"}, srv.Client())
	require.NoError(t, err)
	return sink
}

func TestWhatsAppSinkSendsTextAndVideo(t *testing.T) {
	t.Parallel()
	srv, requests := newWhatsAppServer(t, http.StatusOK)
	sink := newTestSink(t, srv)
	ctx := context.Background()

	require.NoError(t, sink.SendText(ctx, "hello"))
	clip := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(clip, []byte("fake mp4"), 0o644))
	handle, err := sink.UploadMedia(ctx, clip)
	require.NoError(t, err)
	assert.Equal(t, "MEDIA42", handle)
	require.NoError(t, sink.SendVideo(ctx, handle, "caption"))

	got := *requests
	require.Len(t, got, 3)
	assert.Equal(t, "Bearer tok", got[0].auth)
	assert.Equal(t, "text", got[0].body["type"])
	assert.Equal(t, "hello", got[0].body["text"].(map[string]any)["body"])
	assert.Equal(t, false, got[0].body["text"].(map[string]any)["preview_url"])
	assert.Equal(t, map[string]string{"type": "video/mp4", "messaging_product": "whatsapp"}, got[1].form)
	assert.Equal(t, "clip.mp4", got[1].file)
	assert.Equal(t, "MEDIA42", got[2].body["video"].(map[string]any)["id"])
	assert.Equal(t, "923001234567", got[2].body["to"])
}

func TestWhatsAppSinkUploadFailure(t *testing.T) {
	t.Parallel()
	srv, _ := newWhatsAppServer(t, http.StatusRequestEntityTooLarge)
	sink := newTestSink(t, srv)
	clip := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(clip, []byte("fake mp4"), 0o644))
	_, err := sink.UploadMedia(context.Background(), clip)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnexpectedResponse))

	_, err = sink.UploadMedia(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	assert.Error(t, err)
}

func TestWhatsAppSinkListsGroups(t *testing.T) {
	t.Parallel()
	srv, _ := newWhatsAppServer(t, http.StatusOK)
	groups, err := newTestSink(t, srv).ListGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Design team", groups[0].Name)
	assert.Equal(t, "Ops", groups[1].Name)
}

func TestWhatsAppSinkRequiresCredentials(t *testing.T) {
	t.Parallel()
	_, err := NewWhatsAppSink(WhatsAppOptions{PhoneNumberID: "p"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMissingCredentials))
	assert.Contains(t, err.Error(), "token, to")
}
