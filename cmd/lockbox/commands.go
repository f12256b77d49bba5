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
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/poiesic/lockbox"
	"github.com/poiesic/lockbox/core"
	"github.com/poiesic/lockbox/vault"
	"github.com/urfave/cli/v2"
)

// withVault opens the vault for the duration of fn.
func withVault(c *cli.Context, fn func(ctx context.Context, v *lockbox.Vault) error) error {
	ctx := c.Context
	v, err := lockbox.Open(ctx, configFromFlags(c))
	if err != nil {
		return err
	}
	defer v.Close()
	return fn(ctx, v)
}

// withUnlocked opens the vault and loads the collection with the secret.
func withUnlocked(c *cli.Context, fn func(ctx context.Context, v *lockbox.Vault) error) error {
	return withVault(c, func(ctx context.Context, v *lockbox.Vault) error {
		secret, err := readSecret(c, secretEnv, "Secret: ")
		if err != nil {
			return err
		}
		if err := v.Unlock(ctx, secret); err != nil {
			if errors.Is(err, vault.ErrDecryption) {
				return fmt.Errorf("cannot unlock collection %q: wrong secret or corrupt data", v.Collection().Name())
			}
			return err
		}
		return fn(ctx, v)
	})
}

func listCommand(c *cli.Context) error {
	return withUnlocked(c, func(ctx context.Context, v *lockbox.Vault) error {
		records := v.Collection().Live()
		if c.Bool("all") {
			records = v.Collection().Records()
		}

		w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tUPDATED")
		for _, r := range records {
			name := r.Name
			if r.Deleted {
				name = "(deleted)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, name, r.Category, formatTime(r.UpdatedAt))
		}
		return w.Flush()
	})
}

func showCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return errors.New("record id is required")
	}

	return withUnlocked(c, func(ctx context.Context, v *lockbox.Vault) error {
		r, ok := v.Collection().Get(id)
		if !ok || r.Deleted {
			return fmt.Errorf("record %q: %w", id, vault.ErrRecordNotFound)
		}

		out := c.App.Writer
		fmt.Fprintf(out, "%s\n", r.Name)
		if r.Category != "" {
			fmt.Fprintf(out, "  category: %s\n", r.Category)
		}
		for _, f := range r.Fields {
			fmt.Fprintf(out, "  %s: %s\n", f.Name, f.Value)
		}
		fmt.Fprintf(out, "  updated: %s\n", formatTime(r.UpdatedAt))
		return nil
	})
}

// parseFields turns name=value arguments into fields.
func parseFields(args []string) ([]core.Field, error) {
	fields := make([]core.Field, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid field %q: expected name=value", arg)
		}
		fields = append(fields, core.Field{Name: strings.TrimSpace(name), Value: value})
	}
	return fields, nil
}

func addCommand(c *cli.Context) error {
	fields, err := parseFields(c.StringSlice("field"))
	if err != nil {
		return err
	}

	return withUnlocked(c, func(ctx context.Context, v *lockbox.Vault) error {
		draft := &core.Record{}
		if id := c.String("id"); id != "" {
			existing, ok := v.Collection().Get(id)
			if !ok || existing.Deleted {
				return fmt.Errorf("record %q: %w", id, vault.ErrRecordNotFound)
			}
			draft = existing.Clone()
		}

		if c.IsSet("name") {
			draft.Name = c.String("name")
		}
		if c.IsSet("category") {
			draft.Category = c.String("category")
		}
		if len(fields) > 0 {
			draft.Fields = fields
		}

		if err := v.Collection().Save(ctx, vault.WithRecord(draft)); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, draft.ID)
		return nil
	})
}

func removeCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return errors.New("record id is required")
	}

	return withUnlocked(c, func(ctx context.Context, v *lockbox.Vault) error {
		if err := v.Collection().Remove(id); err != nil {
			return fmt.Errorf("record %q: %w", id, err)
		}
		return v.Collection().Save(ctx)
	})
}

func existsCommand(c *cli.Context) error {
	return withVault(c, func(ctx context.Context, v *lockbox.Vault) error {
		ok, err := v.Collection().Exists(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, ok)
		return nil
	})
}

func syncCommand(c *cli.Context) error {
	return withVault(c, func(ctx context.Context, v *lockbox.Vault) error {
		if v.Remote() == nil {
			return lockbox.ErrRemoteNotConfigured
		}
		secret, err := readSecret(c, secretEnv, "Secret: ")
		if err != nil {
			return err
		}
		if err := v.Unlock(ctx, secret); err != nil {
			return err
		}

		report, err := v.Sync(ctx, vault.WithSecret(secret))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "fetched %d, added %d, updated %d\n", report.Fetched, report.Added, report.Updated)
		return nil
	})
}

func passwdCommand(c *cli.Context) error {
	return withUnlocked(c, func(ctx context.Context, v *lockbox.Vault) error {
		secret, err := readNewSecret(c)
		if err != nil {
			return err
		}
		if len(secret) == 0 {
			return errors.New("new secret must not be empty")
		}
		return v.Collection().SetPassword(ctx, secret)
	})
}

// withCategories opens the vault and loads the category table. No secret is needed.
func withCategories(c *cli.Context, fn func(ctx context.Context, cats *vault.Categories) error) error {
	return withVault(c, func(ctx context.Context, v *lockbox.Vault) error {
		cats := v.Categories()
		if err := cats.Fetch(ctx); err != nil {
			return err
		}
		return fn(ctx, cats)
	})
}

func categorySetCommand(c *cli.Context) error {
	name := c.Args().Get(0)
	if name == "" {
		return errors.New("category name is required")
	}

	color := 0
	if arg := c.Args().Get(1); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid color %q", arg)
		}
		color = n
	}

	return withCategories(c, func(ctx context.Context, cats *vault.Categories) error {
		if color == 0 {
			color = cats.AutoColor()
		}
		cats.Set(name, color)
		if err := cats.Save(ctx); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s\t%d\n", name, color)
		return nil
	})
}

func categoryListCommand(c *cli.Context) error {
	return withCategories(c, func(ctx context.Context, cats *vault.Categories) error {
		for _, cat := range cats.List() {
			fmt.Fprintf(c.App.Writer, "%s\t%d\n", cat.Name, cat.Color)
		}
		return nil
	})
}

func categoryRemoveCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return errors.New("category name is required")
	}

	return withCategories(c, func(ctx context.Context, cats *vault.Categories) error {
		cats.Remove(name)
		return cats.Save(ctx)
	})
}
