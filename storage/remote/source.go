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


// Package remote implements a storage.Source backed by an HTTP sync service.
//
// The service holds one blob per account:
//
//	GET  {host}/{account}  returns the blob, 404 when none was saved
//	POST {host}/{account}  replaces the blob with the request body
//
// The collection name passed to Fetch, Save and Exists is only used in
// errors and log output.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/poiesic/lockbox/storage"
)

// maxDetail caps how much of an error response body is kept.
const maxDetail = 512

// Source talks to a sync service over HTTP.
type Source struct {
	client  *http.Client
	url     string
	maxBlob int64
	logger  *slog.Logger
}

var _ storage.Source = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient replaces the HTTP client. The client's Timeout is kept as is.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		if client != nil {
			s.client = client
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a remote source. cfg is validated first.
func New(cfg *Config, opts ...Option) (*Source, error) {
	if cfg == nil {
		return nil, errors.New("remote config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Source{
		client:  &http.Client{Timeout: cfg.Timeout},
		url:     cfg.Host + "/" + url.PathEscape(cfg.Account),
		maxBlob: cfg.MaxBlobSize,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("source", "remote")
	return s, nil
}

// URL returns the endpoint used for every request.
func (s *Source) URL() string {
	return s.url
}

// Fetch downloads the account blob.
func (s *Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, storage.NewTransportError("fetch", name, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("fetch failed", "collection", name, "err", err)
		return nil, storage.NewTransportError("fetch", name, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBlob+1))
		if err != nil {
			return nil, storage.NewTransportError("fetch", name, err)
		}
		if int64(len(data)) > s.maxBlob {
			return nil, &storage.TransportError{
				Op:     "fetch",
				Name:   name,
				Status: resp.StatusCode,
				Detail: fmt.Sprintf("blob exceeds %d bytes", s.maxBlob),
				Err:    storage.ErrBlobTooLarge,
			}
		}
		return data, nil
	case http.StatusNotFound:
		return nil, storage.ErrNotFound
	default:
		return nil, statusError("fetch", name, resp)
	}
}

// Save uploads data as the account blob.
func (s *Source) Save(ctx context.Context, name string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(data))
	if err != nil {
		return storage.NewTransportError("save", name, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("save failed", "collection", name, "err", err)
		return storage.NewTransportError("save", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("save", name, resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Exists fetches the blob and reports false on a 404. Any other failure
// is returned unchanged.
func (s *Source) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.Fetch(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func statusError(op, name string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetail))
	return &storage.TransportError{
		Op:     op,
		Name:   name,
		Status: resp.StatusCode,
		Detail: strings.TrimSpace(string(body)),
		Err:    fmt.Errorf("unexpected status %s", resp.Status),
	}
}
