package storage

import (
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	t.Run("https", func(t *testing.T) {
		host, secure, err := parseEndpoint("https://s3.example.com")
		require.NoError(t, err)
		assert.Equal(t, "s3.example.com", host)
		assert.True(t, secure)
	})

	t.Run("http with port", func(t *testing.T) {
		host, secure, err := parseEndpoint("http://127.0.0.1:9000")
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9000", host)
		assert.False(t, secure)
	})

	t.Run("bare host", func(t *testing.T) {
		host, secure, err := parseEndpoint("s3.example.com")
		require.NoError(t, err)
		assert.Equal(t, "s3.example.com", host)
		assert.True(t, secure)
	})

	t.Run("invalid", func(t *testing.T) {
		_, _, err := parseEndpoint("https://")
		assert.Error(t, err)
		_, _, err = parseEndpoint("")
		assert.Error(t, err)
	})
}

func TestS3Store(t *testing.T) {
	t.Run("Key", func(t *testing.T) {
		s := &S3Store{prefix: "sungrowmon", profile: "home"}
		assert.Equal(t, "sungrowmon/home.json", s.key())
	})

	t.Run("Validate", func(t *testing.T) {
		s := &S3Store{endpoint: "s3.example.com", bucket: "b", accessKey: "a", secretKey: "s", profile: "default"}
		require.NoError(t, s.Validate())
		s.bucket = ""
		assert.Error(t, s.Validate())
	})

	t.Run("NoSuchKey", func(t *testing.T) {
		err := wrapS3Error(minio.ErrorResponse{Code: "NoSuchKey"})
		assert.ErrorIs(t, err, ErrBlobNotFound)

		err = wrapS3Error(minio.ErrorResponse{Code: "AccessDenied"})
		assert.NotErrorIs(t, err, ErrBlobNotFound)
	})
}
