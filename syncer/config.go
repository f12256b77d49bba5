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


package syncer

import (
	"errors"
	"time"
)

// Config holds retry settings for remote calls.
type Config struct {
	// MaxRetries is the number of attempts made for each remote call.
	// Default: 3
	MaxRetries int

	// RetryDelay is the delay before the first retry. It doubles on each
	// further retry.
	// Default: 500ms
	RetryDelay time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithMaxRetries sets the number of attempts per remote call.
func WithMaxRetries(n int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithRetryDelay sets the base retry delay.
func WithRetryDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = d
	}
}

// DefaultConfig returns a Config with 3 attempts and a 500ms base delay.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
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

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxRetries < 1 {
		return errors.New("syncer config: MaxRetries must be at least 1")
	}
	if c.RetryDelay < 0 {
		return errors.New("syncer config: RetryDelay must not be negative")
	}
	return nil
}
