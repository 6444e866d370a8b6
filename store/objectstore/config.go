// Package objectstore stores JSON documents as objects in a MinIO or
// S3-compatible bucket.
package objectstore

import (
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/roncuevas/LocalJSON/errors"
)

// Config holds object store configuration.
type Config struct {
	// Endpoint is the server address (e.g., "localhost:9000").
	Endpoint string `yaml:"endpoint"`

	// Bucket is the bucket holding the documents.
	Bucket string `yaml:"bucket"`

	// AccessKey is the access key ID for authentication.
	AccessKey string `yaml:"access_key"`

	// SecretKey is the secret access key for authentication.
	SecretKey string `yaml:"secret_key"`

	// UseSSL enables HTTPS connections.
	UseSSL bool `yaml:"use_ssl"`

	// Prefix namespaces every document key inside the bucket.
	Prefix string `yaml:"prefix"`

	// Client is an optional pre-configured client. When set, Endpoint,
	// AccessKey and SecretKey are ignored.
	Client *minio.Client `yaml:"-"`
}

// validate checks if the configuration is valid.
// Either Client or Endpoint, AccessKey and SecretKey must be provided.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return errors.New(errors.CodeInvalidConfig, "bucket is required")
	}
	if c.Client != nil {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New(errors.CodeInvalidConfig, "endpoint is required when client is not provided")
	}
	if c.AccessKey == "" {
		return errors.New(errors.CodeInvalidConfig, "access key is required when client is not provided")
	}
	if c.SecretKey == "" {
		return errors.New(errors.CodeInvalidConfig, "secret key is required when client is not provided")
	}
	return nil
}

// normalizePrefix converts backslashes and trims surrounding slashes.
// "." and "" both mean no prefix.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.ReplaceAll(prefix, "\\", "/"), "/")
	if prefix == "." {
		return ""
	}
	return prefix
}
