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


package remote

import (
	"errors"
	"strings"
	"time"

	"github.com/poiesic/lockbox/storage"
)

// Config holds the settings of a remote source.
type Config struct {
	// Host is the base URL of the sync service, e.g. "https://sync.example.com".
	Host string

	// Account identifies the blob on the service. It becomes the last
	// path segment of every request.
	Account string

	// Timeout bounds each HTTP request.
	// Default: 30s
	Timeout time.Duration

	// MaxBlobSize bounds the blob accepted from the service, in bytes.
	// Default: storage.MaxBlobSize
	MaxBlobSize int64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the service base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAccount sets the account name.
func WithAccount(account string) ConfigOption {
	return func(c *Config) {
		c.Account = account
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxBlobSize sets the largest blob accepted from the service.
func WithMaxBlobSize(n int64) ConfigOption {
	return func(c *Config) {
		c.MaxBlobSize = n
	}
}

// DefaultConfig returns a Config with no host or account, a 30s timeout
// and storage.MaxBlobSize as the blob limit.
func DefaultConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		MaxBlobSize: storage.MaxBlobSize,
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

// Normalize strips surrounding whitespace and trailing slashes from Host.
func (c *Config) Normalize() {
	c.Host = strings.TrimRight(strings.TrimSpace(c.Host), "/")
	c.Account = strings.TrimSpace(c.Account)
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("remote config: Host is required")
	}
	if !strings.HasPrefix(c.Host, "http://") && !strings.HasPrefix(c.Host, "https://") {
		return errors.New("remote config: Host must be an http or https URL")
	}
	if c.Account == "" {
		return errors.New("remote config: Account is required")
	}
	if c.Timeout <= 0 {
		return errors.New("remote config: Timeout must be positive")
	}
	if c.MaxBlobSize <= 0 {
		return errors.New("remote config: MaxBlobSize must be positive")
	}
	return nil
}
