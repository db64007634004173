// Package storage issues short-lived direct-upload URLs against the object
// storage service. The API server never proxies image bytes; clients upload
// straight to the bucket with the URL minted here.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"skatespot/internal/config"
	"skatespot/internal/models"
	"skatespot/internal/observability"

	"github.com/google/uuid"
)

const requestTimeout = 10 * time.Second

// UploadTicket is the pair of URLs handed back to the client: one to PUT the
// image bytes to, one to reference the object once the upload completes.
type UploadTicket struct {
	UploadURL string    `json:"upload_url"`
	PublicURL string    `json:"public_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Client talks to the object storage direct-upload API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accountID  string
	bucket     string
	token      string
}

// NewClient builds a storage client from config. Callers should gate on
// cfg.StorageConfigured() first; a client built from empty config will fail
// every request.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(cfg.StorageEndpoint, "/"),
		accountID:  cfg.StorageAccountID,
		bucket:     cfg.StorageBucket,
		token:      cfg.StorageToken,
	}
}

type directUploadRequest struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	ExpirySecs  int    `json:"expiry_seconds"`
}

type directUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueUploadURL asks the storage service for a one-shot signed upload URL.
// The object key is server-generated; the client-supplied filename only
// contributes its extension.
func (c *Client) IssueUploadURL(ctx context.Context, filename, contentType string) (*UploadTicket, error) {
	key := objectKey(filename)

	body, err := json.Marshal(directUploadRequest{
		Key:         key,
		ContentType: contentType,
		ExpirySecs:  int((15 * time.Minute).Seconds()),
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/accounts/%s/buckets/%s/direct_upload", c.baseURL, c.accountID, c.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.UpstreamRequestDuration.WithLabelValues("storage", "error").Observe(time.Since(start).Seconds())
		return nil, models.NewUpstreamError("object storage is unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		observability.UpstreamRequestDuration.WithLabelValues("storage", "error").Observe(time.Since(start).Seconds())
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, models.NewUpstreamError(
			"object storage rejected the upload request",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		)
	}
	observability.UpstreamRequestDuration.WithLabelValues("storage", "ok").Observe(time.Since(start).Seconds())

	var parsed directUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, models.NewUpstreamError("object storage returned a malformed response", err)
	}
	if parsed.UploadURL == "" {
		return nil, models.NewUpstreamError("object storage returned no upload URL", nil)
	}

	return &UploadTicket{
		UploadURL: parsed.UploadURL,
		PublicURL: parsed.PublicURL,
		Key:       key,
		ExpiresAt: parsed.ExpiresAt,
	}, nil
}

// objectKey builds a collision-proof key, keeping only the extension from
// the client's filename.
func objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		ext = ""
	}
	return fmt.Sprintf("spots/%s%s", uuid.New(), ext)
}
