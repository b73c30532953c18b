package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"github.com/felixgeelhaar/boss/internal/errors"
)

const (
	envelopeVersion = 1
	kdfIterations   = 100000
	keyLen          = 32
	saltLen         = 16
)

// envelope is the on-disk form of a sealed record
type envelope struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

func isEnvelope(data []byte) bool {
	var probe struct {
		Version    int    `json:"version"`
		Ciphertext string `json:"ciphertext"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Version > 0 && probe.Ciphertext != ""
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, kdfIterations, keyLen, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal encrypts plaintext with AES-256-GCM under a fresh salt and nonce
func seal(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to generate salt", err)
	}

	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to create cipher", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to generate nonce", err)
	}

	env := envelope{
		Version:    envelopeVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, plaintext, nil)),
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to encode envelope", err)
	}
	return data, nil
}

// open reverses seal; a wrong passphrase fails authentication
func open(data []byte, passphrase string) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCredentialRead, errors.KindInternal, "invalid envelope", err)
	}
	if env.Version != envelopeVersion {
		return nil, errors.New(errors.ErrCodeCredentialRead, errors.KindInternal, "unsupported envelope version")
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCredentialRead, errors.KindInternal, "invalid salt", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCredentialRead, errors.KindInternal, "invalid nonce", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCredentialRead, errors.KindInternal, "invalid ciphertext", err)
	}

	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCredentialRead, errors.KindInternal, "failed to create cipher", err)
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, errors.New(errors.ErrCodeCredentialRead, errors.KindInternal, "invalid nonce size")
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCredentialRead, errors.KindInternal, "failed to decrypt credential file", err).
			WithSuggestion("Check BOSS_CREDENTIAL_KEY")
	}
	return plaintext, nil
}
