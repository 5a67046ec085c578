package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/levenlabs/go-lflag"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store keeps the blob as an object in an S3 compatible bucket.
type S3Store struct {
	client *minio.Client

	endpoint  string
	bucket    string
	prefix    string
	accessKey string
	secretKey string
	region    string
	profile   string
}

func configuredS3() *S3Store {
	endpoint := lflag.String("s3-endpoint", "", "S3 endpoint, with or without an http(s):// scheme")
	bucket := lflag.String("s3-bucket", "", "S3 bucket holding credential objects")
	prefix := lflag.String("s3-prefix", "sungrowmon", "Key prefix for credential objects")
	accessKey := lflag.String("s3-access-key", "", "S3 access key")
	secretKey := lflag.String("s3-secret-key", "", "S3 secret key")
	region := lflag.String("s3-region", "", "S3 region")

	s := &S3Store{}

	lflag.Do(func() {
		s.endpoint = strings.TrimSpace(*endpoint)
		s.bucket = strings.TrimSpace(*bucket)
		s.prefix = strings.TrimSpace(*prefix)
		s.accessKey = strings.TrimSpace(*accessKey)
		s.secretKey = strings.TrimSpace(*secretKey)
		s.region = strings.TrimSpace(*region)
	})

	return s
}

// Validate checks if the provider is properly configured.
func (s *S3Store) Validate() error {
	if s.endpoint == "" || s.bucket == "" || s.accessKey == "" || s.secretKey == "" {
		return fmt.Errorf("missing s3 configuration")
	}
	if s.profile == "" {
		return fmt.Errorf("credential profile cannot be empty")
	}
	return nil
}

// Init creates the minio client.
func (s *S3Store) Init() error {
	host, secure, err := parseEndpoint(s.endpoint)
	if err != nil {
		return err
	}
	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(s.accessKey, s.secretKey, ""),
		Secure: secure,
		Region: s.region,
	})
	if err != nil {
		return fmt.Errorf("init s3 client: %w", err)
	}
	s.client = client
	return nil
}

func (s *S3Store) Load(ctx context.Context) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(), minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapS3Error(err)
	}
	defer obj.Close()

	if _, err := obj.Stat(); err != nil {
		return nil, wrapS3Error(err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

func (s *S3Store) Save(ctx context.Context, data []byte) error {
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, s.key(), reader, int64(reader.Len()), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return wrapS3Error(err)
	}
	return nil
}

// Delete removes the object. S3 treats removing a missing key as success.
func (s *S3Store) Delete(ctx context.Context) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.key(), minio.RemoveObjectOptions{}); err != nil {
		return wrapS3Error(err)
	}
	return nil
}

func (s *S3Store) Close() error {
	return nil
}

func (s *S3Store) key() string {
	return path.Join(s.prefix, s.profile+".json")
}

func wrapS3Error(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" {
		return ErrBlobNotFound
	}
	return err
}

func parseEndpoint(raw string) (string, bool, error) {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, fmt.Errorf("parse endpoint: %w", err)
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint: %q", raw)
		}
		return u.Host, u.Scheme == "https", nil
	}
	if raw == "" {
		return "", false, fmt.Errorf("invalid endpoint: %q", raw)
	}
	return raw, true, nil
}
