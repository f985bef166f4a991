package filestore

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-blog-client/credentials"
	"github.com/jrsteele09/go-blog-client/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	fileName = credentials.Key + ".json"
	saltLen  = 16
	keyLen   = 32

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var _ credentials.Store = (*FileStore)(nil)

// record is the on-disk layout. Sealed records carry the token only inside Box.
type record struct {
	AccessToken string `json:"access_token,omitempty"`
	Sealed      bool   `json:"sealed,omitempty"`
	Salt        []byte `json:"salt,omitempty"`
	Nonce       []byte `json:"nonce,omitempty"`
	Box         []byte `json:"box,omitempty"`
}

// FileStore persists the credential as a JSON file in a data folder. When a
// passphrase is set the token is sealed with NaCl secretbox under a scrypt derived key.
type FileStore struct {
	path       string
	passphrase []byte
	lock       sync.Mutex
}

// New creates a file store rooted at dir. An empty passphrase stores the token in clear.
func New(dir, passphrase string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("[filestore New] create data folder: %w", err)
	}
	return &FileStore{
		path:       filepath.Join(dir, fileName),
		passphrase: []byte(passphrase),
	}, nil
}

// Path returns the credential file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", errors.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("[filestore Load] read: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("[filestore Load] decode: %w", errors.ErrInvalidCredential)
	}

	if !rec.Sealed {
		if rec.AccessToken == "" {
			return "", errors.ErrNoCredential
		}
		return rec.AccessToken, nil
	}
	return s.open(rec)
}

func (s *FileStore) Save(_ context.Context, credential string) error {
	if credential == "" {
		return errors.Wrapf(errors.ErrInvalidCredential, "filestore save")
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	rec := record{AccessToken: credential}
	if len(s.passphrase) > 0 {
		sealed, err := s.seal(credential)
		if err != nil {
			return err
		}
		rec = sealed
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("[filestore Save] encode: %w", err)
	}
	return writeAtomic(s.path, data)
}

func (s *FileStore) Delete(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("[filestore Delete] remove: %w", err)
	}
	return nil
}

func (s *FileStore) seal(credential string) (record, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return record{}, fmt.Errorf("[filestore seal] salt: %w", err)
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return record{}, fmt.Errorf("[filestore seal] nonce: %w", err)
	}
	key, err := s.deriveKey(salt)
	if err != nil {
		return record{}, err
	}

	return record{
		Sealed: true,
		Salt:   salt,
		Nonce:  nonce[:],
		Box:    secretbox.Seal(nil, []byte(credential), &nonce, key),
	}, nil
}

func (s *FileStore) open(rec record) (string, error) {
	if len(s.passphrase) == 0 {
		return "", fmt.Errorf("[filestore open] sealed credential needs a passphrase: %w", errors.ErrInvalidCredential)
	}
	if len(rec.Nonce) != 24 {
		return "", fmt.Errorf("[filestore open] bad nonce: %w", errors.ErrInvalidCredential)
	}
	key, err := s.deriveKey(rec.Salt)
	if err != nil {
		return "", err
	}

	var nonce [24]byte
	copy(nonce[:], rec.Nonce)
	plain, ok := secretbox.Open(nil, rec.Box, &nonce, key)
	if !ok {
		return "", fmt.Errorf("[filestore open] wrong passphrase or corrupt file: %w", errors.ErrInvalidCredential)
	}
	return string(plain), nil
}

func (s *FileStore) deriveKey(salt []byte) (*[keyLen]byte, error) {
	derived, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("[filestore deriveKey] scrypt: %w", err)
	}
	var key [keyLen]byte
	copy(key[:], derived)
	return &key, nil
}

// writeAtomic replaces path with data via a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".access_token-*")
	if err != nil {
		return fmt.Errorf("[filestore writeAtomic] temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore writeAtomic] write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore writeAtomic] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestore writeAtomic] close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("[filestore writeAtomic] rename: %w", err)
	}
	return nil
}
