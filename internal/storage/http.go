package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/solara-app/mediakit/internal/authfetch"
	"github.com/solara-app/mediakit/internal/config"
	"github.com/solara-app/mediakit/internal/model"
)

// HTTPStorage uploads through the backend's image endpoints, riding the
// authenticated request wrapper so expired sessions are handled transparently.
type HTTPStorage struct {
	client    *authfetch.Client
	uploadURL string
	deleteURL string
}

func NewHTTPStorage(client *authfetch.Client, backend config.BackendConfig) *HTTPStorage {
	return &HTTPStorage{
		client:    client,
		uploadURL: backend.BaseURL + backend.UploadPath,
		deleteURL: backend.BaseURL + backend.DeletePath,
	}
}

type uploadResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

func (s *HTTPStorage) Upload(ctx context.Context, f *model.File) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	if f.MIME != "" {
		header.Set(config.HCType, f.MIME)
	}

	part, err := writer.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	// bytes.Reader bodies are replayable, so the 401 retry path works.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", err
	}
	req.Header.Set(config.HCType, writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed uploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("malformed upload response: %w", err)
	}

	if resp.StatusCode >= 300 {
		if parsed.Error != "" {
			return "", fmt.Errorf("upload rejected: %s", parsed.Error)
		}
		return "", fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("upload response missing url")
	}

	return parsed.URL, nil
}

func (s *HTTPStorage) Delete(ctx context.Context, url string) error {
	payload, err := json.Marshal(map[string]string{"imageUrl": url})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.deleteURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set(config.HCType, config.CTypeJSON)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10)) //nolint:errcheck

	if resp.StatusCode >= 300 {
		return fmt.Errorf("delete failed with status %d", resp.StatusCode)
	}
	return nil
}
