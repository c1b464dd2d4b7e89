package mallclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadFile sends a file as multipart form data under the "file" field,
// with optional metadata fields alongside it.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader, fields map[string]string) (UploadResult, error) {
	if c == nil || !c.ready {
		return UploadResult{}, ErrClientNotReady
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("mallclient: build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return UploadResult{}, fmt.Errorf("mallclient: read upload content: %w", err)
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return UploadResult{}, fmt.Errorf("mallclient: build upload: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("mallclient: build upload: %w", err)
	}

	outcome, err := c.do(ctx, callOptions{
		method:      http.MethodPost,
		path:        c.cfg.Endpoints.Upload,
		multipart:   &buf,
		contentType: form.FormDataContentType(),
	})
	if err != nil {
		return UploadResult{}, err
	}

	var result UploadResult
	if len(outcome.Payload) > 0 {
		if err := json.Unmarshal(outcome.Payload, &result); err != nil {
			return UploadResult{}, &BusinessError{Message: "malformed upload response"}
		}
	}
	return result, nil
}

// DownloadFile fetches a binary resource. The body passes through
// byte-for-byte with no envelope classification; the caller owns the
// bytes.
func (c *Client) DownloadFile(ctx context.Context, path string) ([]byte, error) {
	if c == nil || !c.ready {
		return nil, ErrClientNotReady
	}

	outcome, err := c.do(ctx, callOptions{
		method: http.MethodGet,
		path:   path,
		raw:    true,
	})
	if err != nil {
		return nil, err
	}
	return outcome.Payload, nil
}
