package storage

import (
	"context"
	"path"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/interfaces"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/tracing"
	"github.com/customeros/docingest/internal/utils"
)

const (
	keyTimeLayout  = "20060102T150405Z"
	keySuffixSize  = 10
	DefaultTimeout = 30 * time.Second
)

var ErrNoPublicURL = errors.New("storage returned no object url")

// Namespace groups the objects of one mailbox configuration.
func Namespace(organizationID, configurationID string) string {
	return path.Join(organizationID, "mailbox", configurationID)
}

// ObjectKey builds <namespace>/<UTC timestamp>-<random suffix>-<sanitized filename>.
func ObjectKey(namespace string, at time.Time, suffix, filename string) string {
	return namespace + "/" + at.UTC().Format(keyTimeLayout) + "-" + suffix + "-" + utils.SanitizeFilename(filename)
}

type uploader struct {
	storage interfaces.StorageService
	timeout time.Duration
	clock   func() time.Time
	suffix  func() string
}

func NewUploader(storage interfaces.StorageService, timeout time.Duration) interfaces.StorageUploader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &uploader{
		storage: storage,
		timeout: timeout,
		clock:   utils.Now,
		suffix:  func() string { return utils.GenerateRandomSuffix(keySuffixSize) },
	}
}

// Upload stores one attachment under a collision resistant key. Any failure is
// an upload error scoped to filename.
func (u *uploader) Upload(ctx context.Context, namespace, filename string, data []byte, contentType string) (*dto.StoredObject, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Uploader.Upload")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	key := ObjectKey(namespace, u.clock(), u.suffix(), filename)
	span.SetTag("key", key)

	uploadCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	location, err := u.storage.Upload(uploadCtx, key, data, contentType)
	if err != nil {
		if uploadCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			err = errors.Wrapf(err, "upload exceeded %s", u.timeout)
		}
		err = ingesterrors.Upload(filename, err)
		tracing.TraceErr(span, err)
		return nil, err
	}

	url := u.storage.GetPublicURL(key, location)
	if url == "" {
		err = ingesterrors.Upload(filename, ErrNoPublicURL)
		tracing.TraceErr(span, err)
		return nil, err
	}

	return &dto.StoredObject{
		Key:         key,
		URL:         url,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}
