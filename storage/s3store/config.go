// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package s3store

import (
	"errors"
	"strings"
)

// Config holds the settings of an S3-compatible object store.
type Config struct {
	// Bucket receives every collection blob.
	Bucket string

	// Prefix is prepended to every object key. May be empty.
	Prefix string

	// Region is the bucket region.
	// Default: "us-east-1"
	Region string

	// Endpoint overrides the service URL, e.g. "http://127.0.0.1:9000" for MinIO.
	// Empty uses the AWS default.
	Endpoint string

	// AccessKey and SecretKey are static credentials. When both are empty
	// the default AWS credential chain is used.
	AccessKey string
	SecretKey string

	// UsePathStyle addresses buckets as {endpoint}/{bucket}.
	UsePathStyle bool
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBucket sets the bucket name.
func WithBucket(bucket string) ConfigOption {
	return func(c *Config) {
		c.Bucket = bucket
	}
}

// WithPrefix sets the object key prefix.
func WithPrefix(prefix string) ConfigOption {
	return func(c *Config) {
		c.Prefix = prefix
	}
}

// WithRegion sets the bucket region.
func WithRegion(region string) ConfigOption {
	return func(c *Config) {
		c.Region = region
	}
}

// WithEndpoint sets a custom endpoint and switches to path-style addressing.
func WithEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.Endpoint = endpoint
		c.UsePathStyle = true
	}
}

// WithStaticCredentials sets a fixed access key pair.
func WithStaticCredentials(accessKey, secretKey string) ConfigOption {
	return func(c *Config) {
		c.AccessKey = accessKey
		c.SecretKey = secretKey
	}
}

// DefaultConfig returns a Config for us-east-1 with no bucket.
func DefaultConfig() *Config {
	return &Config{
		Region: "us-east-1",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize trims the endpoint and makes a non-empty prefix end with "/".
func (c *Config) Normalize() {
	c.Endpoint = strings.TrimRight(strings.TrimSpace(c.Endpoint), "/")
	c.Prefix = strings.TrimLeft(c.Prefix, "/")
	if c.Prefix != "" && !strings.HasSuffix(c.Prefix, "/") {
		c.Prefix += "/"
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Bucket == "" {
		return errors.New("s3 config: Bucket is required")
	}
	if c.Region == "" {
		return errors.New("s3 config: Region is required")
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return errors.New("s3 config: AccessKey and SecretKey must be set together")
	}
	return nil
}
