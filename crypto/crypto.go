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


package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-crypt/x/blake2b"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	envelopeVersion = 1
	kdfName         = "argon2id"
	keyLen          = chacha20poly1305.KeySize
	saltLen         = 16
	kcvLen          = 8

	// Upper bounds accepted from an envelope, so a crafted blob cannot
	// make Decrypt allocate arbitrary memory.
	maxTime    = 8
	maxMemory  = 256 * 1024 // KiB, four times the default
	maxThreads = 64
)

// additionalData binds ciphertexts to this envelope format.
var additionalData = []byte("lockbox/v1")

// Cipher is the password-based encryption primitive used by the vault.
// Implementations must be safe for concurrent use.
type Cipher interface {
	// Encrypt seals plaintext under secret and returns a self-describing blob.
	Encrypt(secret, plaintext []byte) ([]byte, error)

	// Decrypt opens a blob produced by Encrypt.
	// Returns an error wrapping ErrDecrypt on a wrong secret or corrupt input.
	Decrypt(secret, blob []byte) ([]byte, error)
}

// Params holds the argon2id key derivation cost.
type Params struct {
	// Time is the number of passes over memory.
	Time uint32
	// Memory is the memory cost in KiB.
	Memory uint32
	// Threads is the degree of parallelism.
	Threads uint8
}

// DefaultParams returns the interactive argon2id cost used for new blobs.
func DefaultParams() Params {
	return Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
	}
}

// Validate checks that the parameters are usable and within bounds.
func (p Params) Validate() error {
	if p.Time < 1 || p.Time > maxTime {
		return fmt.Errorf("%w: time must be between 1 and %d", ErrInvalidParams, maxTime)
	}
	if p.Threads < 1 || p.Threads > maxThreads {
		return fmt.Errorf("%w: threads must be between 1 and %d", ErrInvalidParams, maxThreads)
	}
	if p.Memory < 8*uint32(p.Threads) || p.Memory > maxMemory {
		return fmt.Errorf("%w: memory must be between %d and %d KiB", ErrInvalidParams, 8*uint32(p.Threads), maxMemory)
	}
	return nil
}

type kdfParams struct {
	Name    string `json:"name"`
	Time    uint32 `json:"t"`
	Memory  uint32 `json:"m"`
	Threads uint8  `json:"p"`
}

// envelope is the JSON wire form of an encrypted blob.
// Byte slices are base64 encoded by encoding/json.
type envelope struct {
	Version int       `json:"v"`
	KDF     kdfParams `json:"kdf"`
	Salt    []byte    `json:"salt"`
	Nonce   []byte    `json:"nonce"`
	KCV     []byte    `json:"kcv"`
	Data    []byte    `json:"ct"`
}

// PasswordCipher derives a key from the secret with argon2id and seals
// data with XChaCha20-Poly1305.
type PasswordCipher struct {
	params Params
	random io.Reader
}

var _ Cipher = (*PasswordCipher)(nil)

// New creates a PasswordCipher that encrypts with the given cost.
// Decrypt always uses the cost recorded in the blob.
func New(params Params) (*PasswordCipher, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &PasswordCipher{params: params, random: rand.Reader}, nil
}

// Encrypt seals plaintext under secret.
func (c *PasswordCipher) Encrypt(secret, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(c.random, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key := deriveKey(secret, salt, c.params)
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(c.random, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	kcv, err := keyCheckValue(key)
	if err != nil {
		return nil, err
	}

	env := envelope{
		Version: envelopeVersion,
		KDF: kdfParams{
			Name:    kdfName,
			Time:    c.params.Time,
			Memory:  c.params.Memory,
			Threads: c.params.Threads,
		},
		Salt:  salt,
		Nonce: nonce,
		KCV:   kcv,
		Data:  aead.Seal(nil, nonce, plaintext, additionalData),
	}
	return json.Marshal(env)
}

// Decrypt opens a blob produced by Encrypt.
func (c *PasswordCipher) Decrypt(secret, blob []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if err := env.validate(); err != nil {
		return nil, err
	}

	params := Params{Time: env.KDF.Time, Memory: env.KDF.Memory, Threads: env.KDF.Threads}
	key := deriveKey(secret, env.Salt, params)
	defer wipe(key)

	kcv, err := keyCheckValue(key)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(kcv, env.KCV) != 1 {
		return nil, fmt.Errorf("%w: key check failed", ErrDecrypt)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Data, additionalData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}
	return plaintext, nil
}

func (e *envelope) validate() error {
	if e.Version != envelopeVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrMalformedEnvelope, e.Version)
	}
	if e.KDF.Name != kdfName {
		return fmt.Errorf("%w: unsupported kdf %q", ErrMalformedEnvelope, e.KDF.Name)
	}
	params := Params{Time: e.KDF.Time, Memory: e.KDF.Memory, Threads: e.KDF.Threads}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if len(e.Salt) == 0 {
		return fmt.Errorf("%w: missing salt", ErrMalformedEnvelope)
	}
	if len(e.Nonce) != chacha20poly1305.NonceSizeX {
		return fmt.Errorf("%w: bad nonce length %d", ErrMalformedEnvelope, len(e.Nonce))
	}
	if len(e.KCV) != kcvLen {
		return fmt.Errorf("%w: bad key check length %d", ErrMalformedEnvelope, len(e.KCV))
	}
	return nil
}

func deriveKey(secret, salt []byte, p Params) []byte {
	return argon2.IDKey(secret, salt, p.Time, p.Memory, p.Threads, keyLen)
}

// keyCheckValue returns a short BLAKE2b digest of the derived key, used to
// tell a wrong secret apart from a corrupt ciphertext.
func keyCheckValue(key []byte) ([]byte, error) {
	h, err := blake2b.New(kcvLen, nil)
	if err != nil {
		return nil, err
	}
	h.Write(key)
	return h.Sum(nil), nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
