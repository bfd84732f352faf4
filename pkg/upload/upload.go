package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/pillar-dev/pillar/internal/apierr"
	"github.com/pillar-dev/pillar/pkg/api"
)

// ErrTooLarge is returned when a file exceeds the uploader's size limit.
var ErrTooLarge = errors.New("upload: file too large")

// Uploader stores an image and returns the server-shaped Image record to
// embed in posts, columns and user profiles.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (*api.Image, error)
}

// APIUploader sends images to the blog API's own upload endpoint as a
// multipart form. This is the default path; the backend forwards the
// bytes to its CDN and answers with the Image record.
type APIUploader struct {
	baseURL    string
	httpClient *http.Client
	tokens     api.TokenSource
	maxSize    int64
}

// APIOption configures an APIUploader.
type APIOption func(*APIUploader)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) APIOption {
	return func(u *APIUploader) {
		u.httpClient = hc
	}
}

// WithTokenSource sets the credential source; uploads require auth.
func WithTokenSource(ts api.TokenSource) APIOption {
	return func(u *APIUploader) {
		u.tokens = ts
	}
}

// WithMaxSize bounds the upload size in bytes. Default: 10 MB.
func WithMaxSize(n int64) APIOption {
	return func(u *APIUploader) {
		u.maxSize = n
	}
}

// NewAPIUploader creates an uploader posting to baseURL + "/upload".
func NewAPIUploader(baseURL string, opts ...APIOption) *APIUploader {
	u := &APIUploader{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		maxSize:    10 << 20,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload implements Uploader.
func (u *APIUploader) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*api.Image, error) {
	body, formType, err := buildMultipart(filename, contentType, r, u.maxSize)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/upload", body)
	if err != nil {
		return nil, apierr.Transport(err)
	}
	req.Header.Set("Content-Type", formType)
	if u.tokens != nil {
		if token := u.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, apierr.Transport(err)
	}
	defer resp.Body.Close()

	var env struct {
		Code int             `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, apierr.Decode(err, resp.StatusCode)
	}
	if env.Code != 0 {
		return nil, apierr.FromEnvelope(env.Code, env.Msg, resp.StatusCode)
	}

	var img api.Image
	if err := json.Unmarshal(env.Data, &img); err != nil {
		return nil, apierr.Decode(err, resp.StatusCode)
	}
	return &img, nil
}

// buildMultipart buffers r into a multipart body with a single "file"
// field, enforcing the size limit while copying.
func buildMultipart(filename, contentType string, r io.Reader, maxSize int64) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreatePart(partHeader(filename, contentType))
	if err != nil {
		return nil, "", fmt.Errorf("create multipart field: %w", err)
	}

	src := r
	if maxSize > 0 {
		src = io.LimitReader(r, maxSize+1)
	}
	n, err := io.Copy(part, src)
	if err != nil {
		return nil, "", fmt.Errorf("copy upload body: %w", err)
	}
	if maxSize > 0 && n > maxSize {
		return nil, "", ErrTooLarge
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// partHeader builds the "file" field header carrying both the filename
// and the original content type.
func partHeader(filename, contentType string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return h
}
