package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/customeros/docingest/interfaces"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/logger"
)

const (
	secretPrefix = "v1:"
	hkdfInfo     = "docingest mailbox credential v1"
)

var (
	ErrMissingKey      = errors.New("credential encryption key is not configured")
	ErrMalformedSecret = errors.New("malformed credential secret")
)

type Config struct {
	EncryptionKey string
	// Production refuses to start without a key instead of falling back to passthrough.
	Production bool
}

type vault struct {
	key         []byte
	passthrough bool
}

func NewVault(cfg Config, log logger.Logger) (interfaces.CredentialVault, error) {
	if cfg.EncryptionKey == "" {
		if cfg.Production {
			return nil, ErrMissingKey
		}
		log.Warn("CREDENTIAL_ENCRYPTION_KEY is not set, mailbox credentials are read as plaintext; do not use this mode in production")
		return &vault{passthrough: true}, nil
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(cfg.EncryptionKey), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, errors.Wrap(err, "derive credential key")
	}
	return &vault{key: key}, nil
}

// Reveal decrypts a stored secret. Errors never carry secret material.
func (v *vault) Reveal(secret string) (string, error) {
	if v.passthrough {
		return secret, nil
	}
	if !strings.HasPrefix(secret, secretPrefix) {
		return "", ingesterrors.Credential(errors.Wrap(ErrMalformedSecret, "unknown format"))
	}

	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
	if err != nil {
		return "", ingesterrors.Credential(errors.Wrap(ErrMalformedSecret, "invalid encoding"))
	}

	aead, err := chacha20poly1305.NewX(v.key)
	if err != nil {
		return "", ingesterrors.Credential(err)
	}
	if len(payload) < aead.NonceSize()+aead.Overhead() {
		return "", ingesterrors.Credential(errors.Wrap(ErrMalformedSecret, "payload too short"))
	}

	nonce, ciphertext := payload[:aead.NonceSize()], payload[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ingesterrors.Credential(errors.Wrap(ErrMalformedSecret, "authentication failed"))
	}
	return string(plaintext), nil
}

func (v *vault) Conceal(plaintext string) (string, error) {
	if v.passthrough {
		return plaintext, nil
	}

	aead, err := chacha20poly1305.NewX(v.key)
	if err != nil {
		return "", ingesterrors.Credential(err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", ingesterrors.Credential(errors.Wrap(err, "generate nonce"))
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return secretPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}
