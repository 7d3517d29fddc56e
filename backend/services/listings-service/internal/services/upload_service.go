package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/dtos"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.\-]+`)

// ObjectStore writes one object and returns the URL it is publicly served from.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType, contentDisposition string) (string, error)
}

// S3ObjectStore streams objects into a bucket with the multipart uploader, so
// large images never sit in memory whole.
type S3ObjectStore struct {
	uploader      *manager.Uploader
	bucket        string
	region        string
	publicBaseURL string
}

// NewS3ObjectStore builds a store on client. publicBaseURL (a CDN in front of
// the bucket, for example) replaces the virtual-hosted bucket URL when set.
func NewS3ObjectStore(client *s3.Client, bucket, region, publicBaseURL string) *S3ObjectStore {
	return &S3ObjectStore{
		uploader:      manager.NewUploader(client),
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *S3ObjectStore) Put(ctx context.Context, key string, body io.Reader, contentType, contentDisposition string) (string, error) {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               body,
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(contentDisposition),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.PublicURL(key), nil
}

func (s *S3ObjectStore) PublicURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

type UploadService struct {
	store    ObjectStore
	observer Observer
	now      func() time.Time
	suffix   func() string
}

func NewUploadService(store ObjectStore, observer Observer) *UploadService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &UploadService{
		store:    store,
		observer: observer,
		now:      time.Now,
		suffix:   func() string { return uuid.NewString()[:8] },
	}
}

// Upload relays body to object storage under properties/<suffix>-<filename>.
// An empty body is rejected before anything is written.
func (s *UploadService) Upload(ctx context.Context, filename string, body io.Reader, contentType string) (*dtos.UploadResponse, error) {
	if body == nil {
		return nil, emptyUploadError()
	}
	br := bufio.NewReader(body)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, emptyUploadError()
		}
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "request failed", Err: err}
	}

	safe := SanitizeFilename(filename, s.now())
	key := utils.UploadKeyPrefix + s.suffix() + "-" + safe
	if contentType == "" {
		contentType = utils.DefaultUploadContentType
	}
	disposition := fmt.Sprintf(`attachment; filename="%s"`, safe)

	counter := &countingReader{r: br}
	start := time.Now()
	url, err := s.store.Put(ctx, key, counter, contentType, disposition)
	s.observer.RecordUpload(time.Since(start), counter.n, err)
	if err != nil {
		return nil, utils.NewUpstreamError("upload failed", err)
	}

	utils.Logger.WithField("key", key).Infof("Uploaded %d bytes", counter.n)
	return &dtos.UploadResponse{
		URL:                url,
		Pathname:           key,
		ContentType:        contentType,
		ContentDisposition: disposition,
		Size:               counter.n,
	}, nil
}

// SanitizeFilename keeps letters, digits, '_', '.' and '-'. Every run of other
// characters becomes a single '_'. A blank name becomes file-<unix millis>.
func SanitizeFilename(name string, now time.Time) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("file-%d", now.UnixMilli())
	}
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

func emptyUploadError() error {
	return utils.NewClientError(utils.ErrCodeEmptyUpload, utils.ErrEmptyUpload.Error(), utils.ErrEmptyUpload)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
