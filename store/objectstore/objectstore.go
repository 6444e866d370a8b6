package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/fs/core"
	"github.com/roncuevas/LocalJSON/logging"
	"github.com/roncuevas/LocalJSON/store"
)

// ContentType is set on every object written by the store.
const ContentType = "application/json"

// Store implements store.Store over a bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
	codec  store.Codec
	logger *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the codec used by GetInto and Put.
func WithCodec(c store.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a store for cfg. It does not contact the server; call
// EnsureBucket to verify connectivity.
func New(cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to create minio client")
		}
	}

	s := &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: normalizePrefix(cfg.Prefix),
		codec:  store.DefaultCodec(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("objectstore").With("bucket", s.bucket)
	return s, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return s.fail(err, errors.CodeUnavailable, errors.CodeUnavailable, "cannot reach bucket",
			map[string]interface{}{"bucket": s.bucket})
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return s.fail(err, errors.CodeStorage, errors.CodeStorage, "failed to create bucket",
			map[string]interface{}{"bucket": s.bucket})
	}
	s.logger.Info(ctx, "bucket created")
	return nil
}

// objectKey maps a document key to its object key.
func (s *Store) objectKey(key string) (string, error) {
	name, err := store.CleanKey(key)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return name, nil
	}
	return s.prefix + "/" + name, nil
}

// Get returns the raw bytes stored at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}

	object, err := s.client.GetObject(ctx, s.bucket, obj, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.fail(err, errors.CodeNotFound, errors.CodeStorage, "file not found: "+key, keyFields(key))
	}
	defer func() { _ = object.Close() }()

	// GetObject is lazy; a missing object surfaces on the first read.
	data, err := io.ReadAll(object)
	if err != nil {
		return nil, s.fail(err, errors.CodeNotFound, errors.CodeStorage, "file not found: "+key, keyFields(key))
	}
	return data, nil
}

// GetInto decodes the document at key into v.
func (s *Store) GetInto(ctx context.Context, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return store.Decode(s.codec, key, data, v)
}

// Put encodes v and stores it at key.
func (s *Store) Put(ctx context.Context, key string, v any) error {
	data, err := store.Encode(s.codec, key, v)
	if err != nil {
		return err
	}
	return s.PutRaw(ctx, key, data)
}

// PutRaw uploads data to key.
func (s *Store) PutRaw(ctx context.Context, key string, data []byte) error {
	obj, err := s.objectKey(key)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, s.bucket, obj, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: ContentType})
	if err != nil {
		return s.fail(err, errors.CodeWriteFailed, errors.CodeWriteFailed, "failed to write document", keyFields(key))
	}
	s.logger.Debug(ctx, "document written", "key", key, "size", len(data))
	return nil
}

// Exists reports whether an object is stored at key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	obj, err := s.objectKey(key)
	if err != nil {
		return false, err
	}

	_, err = s.client.StatObject(ctx, s.bucket, obj, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if terr := translate(err); errors.Is(terr, core.ErrNotExist) {
		return false, nil
	}
	return false, s.fail(err, errors.CodeStorage, errors.CodeStorage, "failed to stat document", keyFields(key))
}

// Delete removes the object at key. S3 deletes are idempotent, so the
// object is checked first to report absent keys as failures.
func (s *Store) Delete(ctx context.Context, key string) error {
	obj, err := s.objectKey(key)
	if err != nil {
		return err
	}

	if _, err := s.client.StatObject(ctx, s.bucket, obj, minio.StatObjectOptions{}); err != nil {
		return s.fail(err, errors.CodeDeleteFailed, errors.CodeDeleteFailed, "failed to delete document", keyFields(key))
	}
	if err := s.client.RemoveObject(ctx, s.bucket, obj, minio.RemoveObjectOptions{}); err != nil {
		return s.fail(err, errors.CodeDeleteFailed, errors.CodeDeleteFailed, "failed to delete document", keyFields(key))
	}
	s.logger.Debug(ctx, "document deleted", "key", key)
	return nil
}

// List returns the sorted .json keys directly under dir. A non-root dir
// with no objects at all is reported as CodeDirectoryNotFound.
func (s *Store) List(ctx context.Context, dir string) ([]string, error) {
	name := ""
	if strings.TrimSpace(dir) != "" {
		cleaned, err := store.CleanKey(dir)
		if err != nil {
			return nil, err
		}
		name = cleaned
	}

	listPrefix := s.prefix
	if name != "" {
		if listPrefix != "" {
			listPrefix += "/"
		}
		listPrefix += name
	}
	if listPrefix != "" {
		listPrefix += "/"
	}

	keys := []string{}
	seen := false
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    listPrefix,
		Recursive: false,
	}) {
		if object.Err != nil {
			return nil, s.fail(object.Err, errors.CodeDirectoryNotFound, errors.CodeStorage,
				"directory not found: "+dir, map[string]interface{}{"dir": dir})
		}
		seen = true

		base := strings.TrimPrefix(object.Key, listPrefix)
		// Common prefixes (subdirectories) end with "/".
		if base == "" || strings.HasSuffix(base, "/") || path.Ext(base) != store.Extension {
			continue
		}
		if name == "" {
			keys = append(keys, base)
		} else {
			keys = append(keys, name+"/"+base)
		}
	}

	if !seen && name != "" {
		return nil, errors.WithContext(
			errors.New(errors.CodeDirectoryNotFound, "directory not found: "+dir), "dir", dir)
	}
	sort.Strings(keys)
	return keys, nil
}

// fail maps a MinIO error to a store error. Missing objects take
// missingCode, permission failures become CodeForbidden and anything else
// takes failCode and is marked retryable.
func (s *Store) fail(err error, missingCode, failCode errors.ErrorCode, msg string, fields map[string]interface{}) errors.StoreError {
	terr := translate(err)
	switch {
	case errors.Is(terr, core.ErrNotExist):
		return errors.WrapWithContext(terr, missingCode, msg, fields)
	case errors.Is(terr, core.ErrPermission):
		return errors.WrapWithContext(terr, errors.CodeForbidden, "access denied", fields)
	}
	return errors.WithClassification(
		errors.WrapWithContext(terr, failCode, msg, fields),
		errors.ClassificationRetryable)
}

// translate tags MinIO error responses with the matching fs sentinel
// while keeping the original error in the chain.
func translate(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %w", core.ErrNotExist, err)
	case "AccessDenied":
		return fmt.Errorf("%w: %w", core.ErrPermission, err)
	}
	return err
}

func keyFields(key string) map[string]interface{} {
	return map[string]interface{}{"key": key}
}

var _ store.Store = (*Store)(nil)
