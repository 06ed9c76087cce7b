package storage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"github.com/johanforsgren/codenvy-remotes/internal/logger"
)

// sealedPrefix marks a token value encrypted by a Sealer. Values without it
// are plaintext and pass through Open unchanged.
const sealedPrefix = "age:"

// Sealer encrypts tokens at rest to a single age X25519 identity. A nil
// *Sealer stores tokens in plaintext.
type Sealer struct {
	identity *age.X25519Identity
}

func NewSealer(identity *age.X25519Identity) *Sealer {
	return &Sealer{identity: identity}
}

// LoadSealer reads the identity at path, generating and writing a new one
// (mode 0600) when the file does not exist yet.
func LoadSealer(path string) (*Sealer, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		identity, err := age.GenerateX25519Identity()
		if err != nil {
			return nil, fmt.Errorf("generating token key: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating token key directory: %w", err)
		}
		logger.LogFileWrite(path)
		if err := os.WriteFile(path, []byte(identity.String()+"\n"), 0600); err != nil {
			logger.LogError("WRITE_TOKEN_KEY", path, err)
			return nil, fmt.Errorf("writing token key: %w", err)
		}
		return NewSealer(identity), nil
	}
	if err != nil {
		logger.LogError("READ_TOKEN_KEY", path, err)
		return nil, fmt.Errorf("reading token key: %w", err)
	}

	logger.LogFileOpen(path)
	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parsing token key %s: %w", path, err)
	}
	return NewSealer(identity), nil
}

func (s *Sealer) Seal(token string) (string, error) {
	if s == nil || token == "" || strings.HasPrefix(token, sealedPrefix) {
		return token, nil
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, s.identity.Recipient())
	if err != nil {
		return "", fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := io.WriteString(writer, token); err != nil {
		return "", fmt.Errorf("writing token to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalizing age encryption: %w", err)
	}

	return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext.Bytes()), nil
}

func (s *Sealer) Open(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	if s == nil {
		return "", errors.New("token is sealed but no token key is configured")
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("decoding sealed token: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(raw), s.identity)
	if err != nil {
		return "", fmt.Errorf("decrypting token: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("reading decrypted token: %w", err)
	}
	return string(plaintext), nil
}
