package objectstore

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roncuevas/LocalJSON/errors"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "missing bucket", cfg: Config{Endpoint: "localhost:9000"}, wantErr: "bucket is required"},
		{name: "client only", cfg: Config{Bucket: "docs", Client: &minio.Client{}}},
		{name: "missing endpoint", cfg: Config{Bucket: "docs", AccessKey: "a", SecretKey: "s"}, wantErr: "endpoint is required"},
		{name: "missing access key", cfg: Config{Bucket: "docs", Endpoint: "localhost:9000", SecretKey: "s"}, wantErr: "access key is required"},
		{name: "missing secret key", cfg: Config{Bucket: "docs", Endpoint: "localhost:9000", AccessKey: "a"}, wantErr: "secret key is required"},
		{name: "complete", cfg: Config{Bucket: "docs", Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := map[string]string{
		"":              "",
		".":             "",
		"/":             "",
		"docs":          "docs",
		"/docs/":        "docs",
		`tenants\acme`:  "tenants/acme",
		"tenants/acme/": "tenants/acme",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizePrefix(in), "input %q", in)
	}
}

func TestStore_ObjectKey(t *testing.T) {
	s, err := New(Config{Bucket: "docs", Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Prefix: "/app/"})
	require.NoError(t, err)

	key, err := s.objectKey("settings/./profile.json")
	require.NoError(t, err)
	assert.Equal(t, "app/settings/profile.json", key)

	_, err = s.objectKey("../escape.json")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	bare, err := New(Config{Bucket: "docs", Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"})
	require.NoError(t, err)
	key, err = bare.objectKey("a.json")
	require.NoError(t, err)
	assert.Equal(t, "a.json", key)
}

func TestTranslate(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", Message: "missing"}
	noBucket := minio.ErrorResponse{Code: "NoSuchBucket"}
	denied := minio.ErrorResponse{Code: "AccessDenied"}
	other := stderrors.New("connection reset")

	assert.ErrorIs(t, translate(notFound), fs.ErrNotExist)
	assert.ErrorIs(t, translate(noBucket), fs.ErrNotExist)
	assert.ErrorIs(t, translate(denied), fs.ErrPermission)
	assert.Equal(t, other, translate(other))
}

func TestStore_Fail(t *testing.T) {
	s, err := New(Config{Bucket: "docs", Client: &minio.Client{}})
	require.NoError(t, err)

	missing := s.fail(minio.ErrorResponse{Code: "NoSuchKey"}, errors.CodeNotFound, errors.CodeStorage, "file not found: a.json", keyFields("a.json"))
	assert.True(t, errors.IsNotFound(missing))
	assert.False(t, errors.IsRetryable(missing))

	denied := s.fail(minio.ErrorResponse{Code: "AccessDenied"}, errors.CodeNotFound, errors.CodeStorage, "x", nil)
	assert.Equal(t, errors.CodeForbidden, errors.GetCode(denied))

	flaky := s.fail(stderrors.New("timeout"), errors.CodeNotFound, errors.CodeWriteFailed, "x", nil)
	assert.Equal(t, errors.CodeWriteFailed, errors.GetCode(flaky))
	assert.True(t, errors.IsRetryable(flaky))
}
