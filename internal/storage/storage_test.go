package storage

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skatespot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Second},
		baseURL:    baseURL,
		accountID:  "acct-1",
		bucket:     "spots",
		token:      "secret-token",
	}
}

func TestIssueUploadURL_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq directUploadRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(directUploadResponse{
			UploadURL: "https://upload.example.com/one-shot",
			PublicURL: "https://cdn.example.com/" + gotReq.Key,
			ExpiresAt: time.Now().Add(15 * time.Minute),
		})
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	ticket, err := c.IssueUploadURL(t.Context(), "kickflip.JPG", "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "/accounts/acct-1/buckets/spots/direct_upload", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "image/jpeg", gotReq.ContentType)

	assert.Equal(t, "https://upload.example.com/one-shot", ticket.UploadURL)
	assert.True(t, strings.HasPrefix(ticket.Key, "spots/"))
	assert.True(t, strings.HasSuffix(ticket.Key, ".jpg"), "extension should be normalized: %s", ticket.Key)
}

func TestIssueUploadURL_UpstreamRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bucket quota exceeded", http.StatusForbidden)
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	_, err := c.IssueUploadURL(t.Context(), "a.png", "image/png")
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "UPSTREAM_ERROR", appErr.Code)
	assert.Contains(t, appErr.Error(), "quota")
}

func TestIssueUploadURL_Unreachable(t *testing.T) {
	c := testClient("http://127.0.0.1:1")

	_, err := c.IssueUploadURL(t.Context(), "a.png", "image/png")
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "UPSTREAM_ERROR", appErr.Code)
}

func TestIssueUploadURL_MissingUploadURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	_, err := c.IssueUploadURL(t.Context(), "a.png", "image/png")
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	assert.True(t, strings.HasSuffix(objectKey("photo.jpeg"), ".jpeg"))
	assert.True(t, strings.HasSuffix(objectKey("PHOTO.PNG"), ".png"))
	// unknown extensions are dropped rather than trusted
	assert.False(t, strings.Contains(objectKey("malware.exe"), ".exe"))
	assert.True(t, strings.HasPrefix(objectKey("x"), "spots/"))
}
