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
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

const (
	secretEnv    = "LOCKBOX_SECRET"
	newSecretEnv = "LOCKBOX_NEW_SECRET"
)

var errNoSecret = errors.New("no secret available: set " + secretEnv + " or run in a terminal")

// readSecret returns the secret from env, or prompts for it on the
// controlling terminal.
func readSecret(c *cli.Context, env, prompt string) ([]byte, error) {
	if v, ok := os.LookupEnv(env); ok {
		return []byte(v), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errNoSecret
	}

	fmt.Fprint(c.App.ErrWriter, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(c.App.ErrWriter)
	if err != nil {
		return nil, fmt.Errorf("read secret: %w", err)
	}
	return secret, nil
}

// readNewSecret asks for a new secret twice unless it comes from env.
func readNewSecret(c *cli.Context) ([]byte, error) {
	if v, ok := os.LookupEnv(newSecretEnv); ok {
		return []byte(v), nil
	}

	first, err := readSecret(c, newSecretEnv, "New secret: ")
	if err != nil {
		return nil, err
	}
	again, err := readSecret(c, newSecretEnv, "Repeat new secret: ")
	if err != nil {
		return nil, err
	}
	if string(first) != string(again) {
		return nil, errors.New("secrets do not match")
	}
	return first, nil
}
