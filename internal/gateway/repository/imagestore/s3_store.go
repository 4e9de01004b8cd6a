package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// URLExpiry bounds presigned GET links. Defaults to 7 days.
	URLExpiry time.Duration
}

// S3Store uploads generated images to an S3-compatible bucket and hands out
// presigned links.
type S3Store struct {
	client     *minio.Client
	buckets    bucketAPI
	bucketName string
	region     string
	expiry     time.Duration
	now        func() time.Time

	initMu    sync.Mutex
	initReady bool
}

// bucketAPI is the part of *minio.Client used to prepare the bucket.
type bucketAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Store{
		client:     client,
		buckets:    client,
		bucketName: bucket,
		region:     region,
		expiry:     expiry,
		now:        time.Now,
	}, nil
}

// ensureBucket creates the bucket on first use. Failures are not cached so
// a transient outage does not disable publishing for the process lifetime.
func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.initReady {
		return nil
	}
	exists, err := s.buckets.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.buckets.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return err
		}
	}
	s.initReady = true
	return nil
}

func (s *S3Store) Publish(ctx context.Context, itemID int, mimeType string, data []byte) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("store is nil")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image is empty")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/png"
	}

	key := objectKey(itemID, mimeType, s.now())
	if _, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mimeType,
	}); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, s.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func objectKey(itemID int, mimeType string, at time.Time) string {
	ext := "png"
	if i := strings.LastIndex(mimeType, "/"); i >= 0 && i < len(mimeType)-1 {
		ext = strings.ToLower(mimeType[i+1:])
	}
	return fmt.Sprintf("portfolio/%d-%d.%s", itemID, at.UnixNano(), ext)
}
