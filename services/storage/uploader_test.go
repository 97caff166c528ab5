package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ingesterrors "github.com/customeros/docingest/internal/errors"
)

type mockS3Client struct {
	mock.Mock
	body []byte
}

func (m *mockS3Client) Upload(ctx context.Context, input s3manager.UploadInput) (string, error) {
	if input.Body != nil {
		m.body, _ = io.ReadAll(input.Body)
	}
	args := m.Called(*input.Bucket, *input.Key, *input.ContentType)
	return args.String(0), args.Error(1)
}

var fixedTime = time.Date(2024, 3, 9, 8, 5, 1, 0, time.FixedZone("CET", 3600))

func newTestUploader(client *mockS3Client, publicBaseURL string) *uploader {
	u := NewUploader(NewStorageService(client, StorageConfig{
		BucketName:    "documents",
		PublicBaseURL: publicBaseURL,
	}), time.Second).(*uploader)
	u.clock = func() time.Time { return fixedTime }
	u.suffix = func() string { return "abcdefghij" }
	return u
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "org-1/mailbox/cfg-1", Namespace("org-1", "cfg-1"))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("org-1/mailbox/cfg-1", fixedTime, "abcdefghij", "../Scan 01.pdf")
	assert.Equal(t, "org-1/mailbox/cfg-1/20240309T070501Z-abcdefghij-Scan_01.pdf", key)
}

func TestUploader_UsesPublicBaseURL(t *testing.T) {
	client := &mockS3Client{}
	expectedKey := "org-1/mailbox/cfg-1/20240309T070501Z-abcdefghij-invoice.pdf"
	client.On("Upload", "documents", expectedKey, "application/pdf").
		Return("https://bucket.r2.cloudflarestorage.com/documents/"+expectedKey, nil)

	obj, err := newTestUploader(client, "https://cdn.example.com/").
		Upload(context.Background(), "org-1/mailbox/cfg-1", "invoice.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, expectedKey, obj.Key)
	assert.Equal(t, "https://cdn.example.com/"+expectedKey, obj.URL)
	assert.Equal(t, int64(4), obj.Size)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, []byte("%PDF"), client.body)
	client.AssertExpectations(t)
}

func TestUploader_FallsBackToLocation(t *testing.T) {
	client := &mockS3Client{}
	client.On("Upload", "documents", mock.Anything, "image/png").Return("https://s3.example.com/documents/key", nil)

	obj, err := newTestUploader(client, "").
		Upload(context.Background(), "ns", "logo.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/documents/key", obj.URL)
	assert.True(t, strings.HasPrefix(obj.Key, "ns/"))
}

func TestUploader_Failure(t *testing.T) {
	client := &mockS3Client{}
	client.On("Upload", "documents", mock.Anything, "application/pdf").Return("", errors.New("access denied"))

	_, err := newTestUploader(client, "https://cdn.example.com").
		Upload(context.Background(), "ns", "invoice.pdf", []byte("%PDF"), "application/pdf")
	require.Error(t, err)
	assert.Equal(t, ingesterrors.KindUpload, ingesterrors.KindOf(err))
	assert.Contains(t, err.Error(), "invoice.pdf")
	assert.False(t, ingesterrors.IsFatal(err))
}

func TestUploader_MissingURL(t *testing.T) {
	client := &mockS3Client{}
	client.On("Upload", "documents", mock.Anything, "text/plain").Return("", nil)

	_, err := newTestUploader(client, "").
		Upload(context.Background(), "ns", "notes.txt", []byte("x"), "text/plain")
	assert.ErrorIs(t, err, ErrNoPublicURL)
}
