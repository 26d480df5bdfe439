package avatars

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maternity-care-server/internal/config"
	"maternity-care-server/internal/models"
	"maternity-care-server/internal/utils"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func TestDetect(t *testing.T) {
	ct, err := Detect(pngBytes, 1024)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, err = Detect([]byte("just some text"), 1024)
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = Detect(pngBytes, 8)
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = Detect(nil, 1024)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

type mockAvatarRepo struct {
	blobs map[string]models.AvatarBlob
}

func (m *mockAvatarRepo) PutAvatar(_ context.Context, blob *models.AvatarBlob) error {
	m.blobs[blob.UserID] = *blob
	return nil
}

func (m *mockAvatarRepo) GetAvatar(_ context.Context, userID string) (*models.AvatarBlob, error) {
	b, ok := m.blobs[userID]
	if !ok {
		return nil, fmt.Errorf("avatar %w", utils.ErrNotFound)
	}
	return &b, nil
}

func TestDBStore(t *testing.T) {
	repo := &mockAvatarRepo{blobs: map[string]models.AvatarBlob{}}
	s, err := New(context.Background(), config.AvatarConfig{Backend: config.AvatarBackendDatabase}, repo)
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "u1", "image/png", pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/avatars/u1", url)

	blob, err := s.(*DBStore).Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "image/png", blob.ContentType)
	assert.Equal(t, pngBytes, blob.Data)

	_, err = s.(*DBStore).Get(context.Background(), "u2")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestS3StoreUploadsToBucket(t *testing.T) {
	var (
		mu        sync.Mutex
		gotMethod string
		gotPath   string
		gotType   string
		gotBody   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotMethod, gotPath, gotType, gotBody = r.Method, r.URL.Path, r.Header.Get("Content-Type"), body
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := New(context.Background(), config.AvatarConfig{
		Backend:   config.AvatarBackendS3,
		Bucket:    "avatars-bucket",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
	}, nil)
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "u1", "image/png", pngBytes)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/avatars-bucket/avatars/u1.png", url)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/avatars-bucket/avatars/u1.png", gotPath)
	assert.Equal(t, "image/png", gotType)
	assert.Contains(t, string(gotBody), string(pngBytes))
}

func TestS3StorePublicURLOverride(t *testing.T) {
	s, err := NewS3Store(context.Background(), config.AvatarConfig{
		Bucket:    "b",
		Region:    "eu-west-1",
		AccessKey: "k",
		SecretKey: "s",
		PublicURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com", s.publicURL)

	s, err = NewS3Store(context.Background(), config.AvatarConfig{Bucket: "b", Region: "eu-west-1", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", s.publicURL)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.AvatarConfig{Backend: "ftp"}, nil)
	assert.Error(t, err)
}
