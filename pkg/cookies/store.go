package cookies

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vidforge/vidforge/pkg/crypto"
)

const (
	netscapeFile  = "cookies.txt"
	masterFile    = "cookies.json"
	encryptedFile = "cookies.json.enc"
)

// Store keeps the credential files under one operator-controlled
// directory. Installs overwrite wholesale; there is no versioning.
// Concurrent pipeline reads racing an admin-driven install are an
// accepted last-writer-wins outcome, so no lock is taken here.
type Store struct {
	dir        string
	passphrase string
}

// NewStore creates a store rooted at dir. When passphrase is non-empty
// the structured master copy is kept encrypted at rest; the flattened
// tool input is always plaintext because the acquisition tool reads it
// directly.
func NewStore(dir, passphrase string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create cookie dir: %w", err)
	}
	return &Store{dir: dir, passphrase: passphrase}, nil
}

// Install converts a structured JSON export and replaces both on-disk
// forms. Returns the number of cookies installed.
func (s *Store) Install(jsonExport []byte) (int, error) {
	set, err := ParseJSON(jsonExport)
	if err != nil {
		return 0, err
	}
	if len(set) == 0 {
		return 0, fmt.Errorf("cookie export contains no usable records")
	}

	if err := s.writeAtomic(netscapeFile, set.MarshalNetscape()); err != nil {
		return 0, err
	}

	if s.passphrase != "" {
		enc, err := crypto.Seal(jsonExport, s.passphrase)
		if err != nil {
			return 0, fmt.Errorf("seal master copy: %w", err)
		}
		if err := s.writeAtomic(encryptedFile, enc); err != nil {
			return 0, err
		}
		os.Remove(filepath.Join(s.dir, masterFile))
	} else {
		if err := s.writeAtomic(masterFile, jsonExport); err != nil {
			return 0, err
		}
		os.Remove(filepath.Join(s.dir, encryptedFile))
	}

	return len(set), nil
}

func (s *Store) writeAtomic(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// NetscapePath returns the path of the flattened credential file, or
// "" when none is installed or the file is empty.
func (s *Store) NetscapePath() string {
	path := filepath.Join(s.dir, netscapeFile)
	stat, err := os.Stat(path)
	if err != nil || stat.Size() == 0 {
		return ""
	}
	return path
}

// Status describes the current credential state.
type Status struct {
	Installed   bool      `json:"installed"`
	CookieCount int       `json:"cookie_count"`
	Encrypted   bool      `json:"encrypted"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Status reports on the installed credential file.
func (s *Store) Status() Status {
	path := s.NetscapePath()
	if path == "" {
		return Status{}
	}
	stat, err := os.Stat(path)
	if err != nil {
		return Status{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Status{}
	}

	_, encErr := os.Stat(filepath.Join(s.dir, encryptedFile))
	return Status{
		Installed:   true,
		CookieCount: len(ParseNetscape(data)),
		Encrypted:   encErr == nil,
		UpdatedAt:   stat.ModTime(),
	}
}

// Master returns the structured master copy, decrypting when needed.
func (s *Store) Master() ([]byte, error) {
	if s.passphrase != "" {
		return crypto.OpenFile(filepath.Join(s.dir, encryptedFile), s.passphrase)
	}
	return os.ReadFile(filepath.Join(s.dir, masterFile))
}
