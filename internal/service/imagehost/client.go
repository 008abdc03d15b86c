package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Paveld-cloud/imgbb-bot/internal/model/imagehost"
)

// DefaultBaseURL is the public imgbb upload endpoint.
const DefaultBaseURL = "https://api.imgbb.com/1/upload"

// DefaultTimeoutSeconds bounds a single upload call, matching the generous
// window imgbb itself allows for large files.
const DefaultTimeoutSeconds = 180

// Client uploads named PNG bytes to the imgbb API.
type Client struct {
	config *imagehost.Config
	http   *http.Client
}

// NewClient creates an upload client from the given config.
func NewClient(config *imagehost.Config) *Client {
	timeout := DefaultTimeoutSeconds * time.Second
	if config != nil && config.Timeout > 0 {
		timeout = time.Duration(config.Timeout) * time.Second
	}

	return &Client{
		config: config,
		http:   &http.Client{Timeout: timeout},
	}
}

// APIError is an error reported by the imgbb service itself, as opposed to a
// transport failure on the way there.
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("imgbb rejected the upload: %s (code %d, http status %d)", e.Message, e.Code, e.HTTPStatus)
}

type uploadResponse struct {
	Success    bool   `json:"success"`
	Status     int    `json:"status"`
	StatusCode int    `json:"status_code"`
	StatusTxt  string `json:"status_txt"`
	Data       struct {
		URL       string      `json:"url"`
		URLViewer string      `json:"url_viewer"`
		DeleteURL string      `json:"delete_url"`
		Size      json.Number `json:"size"`
		Image     struct {
			Filename string `json:"filename"`
		} `json:"image"`
	} `json:"data"`
	Error apiErrorPayload `json:"error"`
}

// apiErrorPayload tolerates both error shapes imgbb is known to produce:
// an object with message and code, or a bare string.
type apiErrorPayload struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (p *apiErrorPayload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Message = s
		return nil
	}

	type plain apiErrorPayload
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = apiErrorPayload(obj)
	return nil
}

// Upload sends the PNG bytes to imgbb under the name {stem}.png and returns
// the hosted image description. It never retries; retrying is the caller's
// decision.
func (c *Client) Upload(ctx context.Context, stem string, data []byte) (*imagehost.Result, error) {
	if strings.TrimSpace(stem) == "" {
		return nil, fmt.Errorf("filename stem is empty")
	}

	key, err := resolveKey(c.config)
	if err != nil {
		return nil, err
	}

	name := stem + ".png"

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("key", key); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := writer.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	part, err := writer.CreateFormFile("image", name)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL(), &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imgbb request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read imgbb response: %w", err)
	}

	log.Printf("[imgbb] response status=%d body=%s", resp.StatusCode, snippet(raw, 500))

	var payload uploadResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("imgbb returned non-JSON response: %s", snippet(raw, 200))
	}

	if resp.StatusCode != http.StatusOK || !payload.Success {
		message := payload.Error.Message
		if message == "" {
			message = payload.StatusTxt
		}
		return nil, &APIError{
			HTTPStatus: resp.StatusCode,
			Code:       payload.Error.Code,
			Message:    message,
		}
	}

	if payload.Data.URL == "" {
		return nil, fmt.Errorf("imgbb response is missing the direct url")
	}

	// imgbb is loose about numeric types here, so a parse failure just
	// leaves the size unknown.
	size, _ := payload.Data.Size.Int64()

	filename := payload.Data.Image.Filename
	if filename == "" {
		filename = name
	}

	return &imagehost.Result{
		Filename:  filename,
		URL:       payload.Data.URL,
		ViewerURL: payload.Data.URLViewer,
		DeleteURL: payload.Data.DeleteURL,
		Size:      size,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (c *Client) baseURL() string {
	if c.config != nil {
		if base := strings.TrimSpace(c.config.BaseURL); base != "" {
			return base
		}
	}
	return DefaultBaseURL
}

// snippet bounds response bodies before they reach logs or error messages.
// The cut backs off to a rune boundary so it never splits a multi-byte
// character.
func snippet(b []byte, limit int) string {
	if len(b) <= limit {
		return string(b)
	}

	cut := b[:limit]
	for i := 0; i < utf8.UTFMax && len(cut) > 0; i++ {
		if r, size := utf8.DecodeLastRune(cut); r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return string(cut)
}
