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
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/lockbox"
	"github.com/poiesic/lockbox/crypto"
	"github.com/poiesic/lockbox/storage/s3store"
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
	defaults := lockbox.DefaultConfig()
	kdf := crypto.DefaultParams()

	return &cli.App{
		Name:  "lockbox",
		Usage: "Encrypted record store with last-writer-wins sync",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding the local database",
				Value:   defaults.DataDir,
				EnvVars: []string{"LOCKBOX_DIR"},
			},
			&cli.StringFlag{
				Name:    "backend",
				Usage:   "Local storage engine (badger, sqlite)",
				Value:   lockbox.BackendBadger,
				EnvVars: []string{"LOCKBOX_BACKEND"},
			},
			&cli.StringFlag{
				Name:    "collection",
				Aliases: []string{"c"},
				Usage:   "Collection name",
				Value:   defaults.Collection,
				EnvVars: []string{"LOCKBOX_COLLECTION"},
			},
			&cli.StringFlag{
				Name:    "remote",
				Usage:   "Sync service URL",
				EnvVars: []string{"LOCKBOX_REMOTE"},
			},
			&cli.StringFlag{
				Name:    "account",
				Usage:   "Account name on the sync service",
				EnvVars: []string{"LOCKBOX_ACCOUNT"},
			},
			&cli.DurationFlag{
				Name:  "remote-timeout",
				Usage: "Timeout for each request to the sync service",
				Value: defaults.RemoteTimeout,
			},
			&cli.StringFlag{
				Name:    "s3-bucket",
				Usage:   "Sync through this S3 bucket instead of a sync service",
				EnvVars: []string{"LOCKBOX_S3_BUCKET"},
			},
			&cli.StringFlag{
				Name:    "s3-prefix",
				Usage:   "Object key prefix inside the S3 bucket",
				EnvVars: []string{"LOCKBOX_S3_PREFIX"},
			},
			&cli.StringFlag{
				Name:    "s3-region",
				Usage:   "S3 region",
				Value:   "us-east-1",
				EnvVars: []string{"LOCKBOX_S3_REGION"},
			},
			&cli.StringFlag{
				Name:    "s3-endpoint",
				Usage:   "Custom S3 endpoint, e.g. a MinIO URL",
				EnvVars: []string{"LOCKBOX_S3_ENDPOINT"},
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Worker pool size",
				Value: defaults.Workers,
			},
			&cli.IntFlag{
				Name:  "max-retries",
				Usage: "Maximum attempts for each remote call during sync",
				Value: defaults.SyncRetries,
			},
			&cli.DurationFlag{
				Name:  "retry-delay",
				Usage: "Base delay for exponential backoff",
				Value: defaults.SyncRetryDelay,
			},
			&cli.UintFlag{
				Name:  "kdf-time",
				Usage: "Argon2id passes for new blobs",
				Value: uint(kdf.Time),
			},
			&cli.UintFlag{
				Name:  "kdf-memory",
				Usage: "Argon2id memory in KiB for new blobs",
				Value: uint(kdf.Memory),
			},
			&cli.UintFlag{
				Name:  "kdf-threads",
				Usage: "Argon2id parallelism for new blobs",
				Value: uint(kdf.Threads),
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List records",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Include deleted records",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Show one record with its fields",
				ArgsUsage: "<id>",
				Action:    showCommand,
			},
			{
				Name:   "add",
				Usage:  "Add a record, or edit one with --id",
				Action: addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Edit the record with this id",
					},
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Record name",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Record category",
					},
					&cli.StringSliceFlag{
						Name:    "field",
						Aliases: []string{"f"},
						Usage:   "Field as name=value; repeatable",
					},
				},
			},
			{
				Name:      "remove",
				Usage:     "Delete a record",
				ArgsUsage: "<id>",
				Action:    removeCommand,
			},
			{
				Name:   "exists",
				Usage:  "Report whether the collection has been saved",
				Action: existsCommand,
			},
			{
				Name:   "sync",
				Usage:  "Merge with the remote copy and save both sides",
				Action: syncCommand,
			},
			{
				Name:   "passwd",
				Usage:  "Re-encrypt the collection under a new secret",
				Action: passwdCommand,
			},
			{
				Name:  "category",
				Usage: "Manage categories",
				Subcommands: []*cli.Command{
					{
						Name:      "set",
						Usage:     "Create or recolor a category",
						ArgsUsage: "<name> [color]",
						Action:    categorySetCommand,
					},
					{
						Name:   "list",
						Usage:  "List categories",
						Action: categoryListCommand,
					},
					{
						Name:      "remove",
						Usage:     "Remove a category",
						ArgsUsage: "<name>",
						Action:    categoryRemoveCommand,
					},
				},
			},
		},
	}
}

// configFromFlags builds the vault configuration from global flags.
func configFromFlags(c *cli.Context) *lockbox.Config {
	cfg := lockbox.NewConfig(
		lockbox.WithDataDir(c.String("data-dir")),
		lockbox.WithBackend(c.String("backend")),
		lockbox.WithCollection(c.String("collection")),
		lockbox.WithRemote(c.String("remote"), c.String("account")),
		lockbox.WithWorkers(c.Int("workers")),
		lockbox.WithSyncRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		lockbox.WithKDFParams(crypto.Params{
			Time:    uint32(c.Uint("kdf-time")),
			Memory:  uint32(c.Uint("kdf-memory")),
			Threads: uint8(c.Uint("kdf-threads")),
		}),
	)
	cfg.RemoteTimeout = c.Duration("remote-timeout")

	if bucket := c.String("s3-bucket"); bucket != "" {
		opts := []s3store.ConfigOption{
			s3store.WithBucket(bucket),
			s3store.WithPrefix(c.String("s3-prefix")),
			s3store.WithRegion(c.String("s3-region")),
		}
		if endpoint := c.String("s3-endpoint"); endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(endpoint))
		}
		if ak, sk := os.Getenv("LOCKBOX_S3_ACCESS_KEY"), os.Getenv("LOCKBOX_S3_SECRET_KEY"); ak != "" {
			opts = append(opts, s3store.WithStaticCredentials(ak, sk))
		}
		cfg.S3 = s3store.NewConfig(opts...)
	}
	return cfg
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

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
