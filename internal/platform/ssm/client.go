// Package ssm is a thin client for the ScreenshotMonitor v2 API. It returns
// the API's own record shapes; module adapters map them into domain types.
package ssm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "shotwatch/internal/platform/errors"
	"shotwatch/internal/platform/logging"
)

var log = logging.MustGetLogger("ssm")

const (
	DefaultBaseURL = "https://screenshotmonitor.com/api/v2"
	tokenHeader    = "X-SSM-Token"
	errorBodyLimit = 500
)

// Flex accepts both JSON strings and numbers; the API is inconsistent about
// identifier types across endpoints.
type Flex string

func (f *Flex) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		*f = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	}
	*f = Flex(raw)
	return nil
}

type Activity struct {
	ActivityID   Flex   `json:"activityId"`
	EmploymentID Flex   `json:"employmentId"`
	From         int64  `json:"from"`
	To           *int64 `json:"to"`
	Note         string `json:"note"`
}

type Application struct {
	Name       string  `json:"applicationName"`
	Duration   float64 `json:"duration"`
	FromScreen bool    `json:"fromScreen"`
}

type Screenshot struct {
	ID            Flex          `json:"id"`
	ActivityID    Flex          `json:"activityId"`
	Taken         int64         `json:"taken"`
	URL           string        `json:"url"`
	ActivityLevel *int          `json:"activityLevel"`
	Applications  []Application `json:"applications"`
}

type activityRange struct {
	EmploymentID json.RawMessage `json:"employmentId"`
	From         int64           `json:"from"`
	To           int64           `json:"to"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: screenshotmonitor token", apperrors.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}, nil
}

// GetActivities returns the activities of one employment overlapping [from, to].
func (c *Client) GetActivities(ctx context.Context, employmentID string, from, to time.Time) ([]Activity, error) {
	body := []activityRange{{
		EmploymentID: employmentRef(employmentID),
		From:         from.Unix(),
		To:           to.Unix(),
	}}
	out := []Activity{}
	if err := c.post(ctx, "/GetActivities", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetScreenshots returns the screenshots of the given activities.
func (c *Client) GetScreenshots(ctx context.Context, activityIDs ...string) ([]Screenshot, error) {
	if len(activityIDs) == 0 {
		return []Screenshot{}, nil
	}
	out := []Screenshot{}
	if err := c.post(ctx, "/GetScreenshots", activityIDs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", path, err)
	}
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Content-Type", "application/json")

	log.Debugf("POST %s %s", url, payload)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	log.Debugf("%s status=%d", path, resp.StatusCode)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %s status %d: %s", apperrors.ErrUnexpectedResponse, path, resp.StatusCode, truncate(raw, errorBodyLimit))
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		log.Warningf("unexpected %s response shape, treating as empty: %s", path, truncate(raw, errorBodyLimit))
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// employmentRef sends numeric ids as JSON numbers, as the API expects, and
// anything else as a string.
func employmentRef(id string) json.RawMessage {
	if _, err := strconv.ParseInt(id, 10, 64); err == nil {
		return json.RawMessage(id)
	}
	quoted, _ := json.Marshal(id)
	return quoted
}

func truncate(raw []byte, limit int) string {
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
