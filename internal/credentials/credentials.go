// Package credentials keeps the vendor API key in the OS keychain, with a
// private file as fallback where no keychain is available.
package credentials

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/adamstosho/RugRadar/internal/configs"
)

const (
	KeyringService = "rugradar"
	KeyringUser    = "moralis_api_key"

	keyFileName = "moralis_api_key"
	dirMode     = 0700
	fileMode    = 0600
)

var ErrNotFound = errors.New("no stored API key")

type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore keeps its fallback file in dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// DefaultDir is ~/.rugradar, or the current directory when there is no home.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return "."
	}
	return filepath.Join(home, ".rugradar")
}

func (s *Store) filePath() string {
	return filepath.Join(s.dir, keyFileName)
}

func (s *Store) Save(key string) error {
	key = strings.TrimSpace(key)
	if err := configs.CheckAPIKey(key); err != nil {
		return err
	}

	if err := keyring.Set(KeyringService, KeyringUser, key); err != nil {
		s.logger.Warn("keychain unavailable, falling back to file", "error", err)
		return s.saveFile(key)
	}

	// a key saved before the keychain was available is now stale
	if err := os.Remove(s.filePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("removing legacy key file", "error", err)
	}
	return nil
}

func (s *Store) Load() (string, error) {
	key, err := keyring.Get(KeyringService, KeyringUser)
	if err == nil && key != "" {
		return key, nil
	}

	key, err = s.loadFile()
	if err != nil {
		return "", err
	}

	if migrateErr := keyring.Set(KeyringService, KeyringUser, key); migrateErr == nil {
		s.logger.Info("migrated API key from file to OS keychain")
		_ = os.Remove(s.filePath())
	}
	return key, nil
}

// Delete removes the key from both places. An unavailable keychain is only logged.
func (s *Store) Delete() error {
	if err := keyring.Delete(KeyringService, KeyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		s.logger.Warn("keychain unavailable, only the key file is removed", "error", err)
	}
	if err := os.Remove(s.filePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting key file: %w", err)
	}
	return nil
}

func (s *Store) saveFile(key string) error {
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return fmt.Errorf("creating dir %s: %w", s.dir, err)
	}
	if err := os.WriteFile(s.filePath(), []byte(key), fileMode); err != nil {
		return fmt.Errorf("writing key file: %w", err)
	}
	return nil
}

func (s *Store) loadFile() (string, error) {
	b, err := os.ReadFile(s.filePath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading key file %s: %w", s.filePath(), err)
	}
	key := strings.TrimSpace(string(b))
	if key == "" {
		return "", ErrNotFound
	}
	return key, nil
}
