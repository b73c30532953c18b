package credstore

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/boss/internal/errors"
	"github.com/felixgeelhaar/boss/internal/log"
)

// FileName is the credential file inside the credential directory
const FileName = "credentials.json"

// DefaultDir returns ~/.boss
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".boss"), nil
}

// FileOption configures a FileStore
type FileOption func(*FileStore)

// WithPassphrase seals the file with a key derived from passphrase
func WithPassphrase(passphrase string) FileOption {
	return func(s *FileStore) { s.passphrase = passphrase }
}

// WithLogger sets the logger used to report unreadable files
func WithLogger(l *log.Logger) FileOption {
	return func(s *FileStore) { s.logger = l }
}

// FileStore keeps the credential in a 0600 JSON file
type FileStore struct {
	path       string
	passphrase string
	logger     *log.Logger
}

// NewFileStore creates a store writing to dir/credentials.json
func NewFileStore(dir string, opts ...FileOption) *FileStore {
	s := &FileStore{
		path:   filepath.Join(dir, FileName),
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the credential file path
func (s *FileStore) Path() string {
	return s.path
}

// Sealed reports whether records are encrypted at rest
func (s *FileStore) Sealed() bool {
	return s.passphrase != ""
}

// Get reads the record. Any failure reads as absent.
func (s *FileStore) Get() (*Record, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !isNotExist(err) {
			s.logger.WithError(err).Warn("credential file unreadable", "path", s.path)
		}
		return nil, false
	}

	rec, err := s.decode(data)
	if err != nil {
		s.logger.WithError(err).Warn("credential file ignored", "path", s.path)
		return nil, false
	}
	if !rec.Valid() {
		s.logger.Warn("credential file has no token", "path", s.path)
		return nil, false
	}
	return rec, true
}

func (s *FileStore) decode(data []byte) (*Record, error) {
	if isEnvelope(data) {
		if s.passphrase == "" {
			return nil, errors.New(errors.ErrCodeCredentialRead, errors.KindInternal, "credential file is sealed and no passphrase is set").
				WithSuggestion("Set BOSS_CREDENTIAL_KEY")
		}
		plain, err := open(data, s.passphrase)
		if err != nil {
			return nil, err
		}
		data = plain
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCredentialRead, errors.KindInternal, "credential file is corrupt", err)
	}
	return &rec, nil
}

// Set writes the record atomically
func (s *FileStore) Set(rec Record) error {
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to encode credential", err)
	}

	if s.passphrase != "" {
		data, err = seal(data, s.passphrase)
		if err != nil {
			return err
		}
	}

	return writeFileAtomic(s.path, data)
}

// Clear deletes the file; a missing file is not an error
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !isNotExist(err) {
		return errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to remove credential file", err)
	}
	return nil
}

// writeFileAtomic writes to a temp file in the same directory, syncs it and
// renames it over path, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to create credential directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to create temp file", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		cleanup()
		return errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to set credential file mode", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to write credential file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to sync credential file", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to close credential file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.Wrap(errors.ErrCodeCredentialWrite, errors.KindInternal, "failed to replace credential file", err)
	}
	return nil
}

func isNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist)
}
