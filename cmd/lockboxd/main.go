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


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/poiesic/lockbox/server"
	"github.com/poiesic/lockbox/storage"
	"github.com/poiesic/lockbox/storage/badger"
	"github.com/poiesic/lockbox/storage/sqlite"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lockboxd",
		Usage: "Blob sync service for lockbox clients",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve GET/POST /{account}",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "Listen address",
						Value:   ":8080",
						EnvVars: []string{"LOCKBOXD_ADDR"},
					},
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the database directory",
						Required: true,
						EnvVars:  []string{"LOCKBOXD_DB"},
					},
					&cli.StringFlag{
						Name:  "backend",
						Usage: "Storage engine (badger, sqlite)",
						Value: "badger",
					},
					&cli.Int64Flag{
						Name:  "max-body",
						Usage: "Maximum blob size in bytes",
						Value: server.DefaultMaxBodySize,
					},
				},
			},
		},
	}
}

func serveCommand(c *cli.Context) error {
	src, closer, err := openSource(c.String("backend"), c.String("db"))
	if err != nil {
		return err
	}
	defer closer.Close()

	srv, err := server.New(src, server.WithMaxBodySize(c.Int64("max-body")))
	if err != nil {
		return err
	}
	return srv.ListenAndServe(c.Context, c.String("addr"))
}

// openSource opens the storage engine rooted at dir.
func openSource(backend, dir string) (storage.Source, io.Closer, error) {
	if dir == "" {
		return nil, nil, fmt.Errorf("database path is required")
	}

	switch strings.ToLower(backend) {
	case "badger":
		b, err := badger.OpenBackend(dir, false)
		if err != nil {
			return nil, nil, err
		}
		return badger.NewSource(b), b, nil
	case "sqlite":
		src, st, err := sqlite.NewSource(filepath.Join(dir, "lockboxd.db"))
		if err != nil {
			return nil, nil, err
		}
		return src, st, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q: must be badger or sqlite", backend)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
