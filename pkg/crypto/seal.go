// Package crypto seals the structured credential master copy for
// storage at rest.
//
// A sealed blob is self-describing:
//
//	magic(4) | version(1) | salt(16) | nonce(12) | ciphertext
//
// The whole header doubles as the AEAD's associated data, so any header
// tampering breaks the open even with the right passphrase.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

const (
	sealMagic   = "VFCJ" // vidforge cookie jar
	sealVersion = 1

	saltSize   = 16
	nonceSize  = 12 // GCM standard
	headerSize = len(sealMagic) + 1 + saltSize + nonceSize

	// Argon2id parameters, sized for an interactive admin install
	// rather than bulk throughput.
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	keyLen       = 32 // AES-256
)

var (
	ErrNotSealed   = errors.New("data is not a sealed credential blob")
	ErrSealVersion = errors.New("sealed blob uses an unknown format version")
	ErrOpenFailed  = errors.New("open failed: wrong passphrase or corrupted blob")
)

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keyLen)
}

func newAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}

// Seal encrypts the credential blob under a passphrase-derived key.
// Salt and nonce are fresh per call; the same input seals differently
// every time.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	header := make([]byte, headerSize, headerSize+len(plaintext)+16)
	copy(header[:4], sealMagic)
	header[4] = sealVersion
	if _, err := io.ReadFull(rand.Reader, header[5:]); err != nil {
		return nil, fmt.Errorf("generate salt and nonce: %w", err)
	}

	salt := header[5 : 5+saltSize]
	nonce := header[5+saltSize:]

	gcm, err := newAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}

	return gcm.Seal(header, nonce, plaintext, header[:headerSize]), nil
}

// Open reverses Seal. Wrong passphrase, a truncated blob, and a
// tampered header are indistinguishable by design and all surface as
// ErrOpenFailed once the framing itself checks out.
func Open(blob []byte, passphrase string) ([]byte, error) {
	if len(blob) < headerSize || string(blob[:4]) != sealMagic {
		return nil, ErrNotSealed
	}
	if blob[4] != sealVersion {
		return nil, ErrSealVersion
	}

	header := blob[:headerSize]
	salt := header[5 : 5+saltSize]
	nonce := header[5+saltSize:]

	gcm, err := newAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, blob[headerSize:], header)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}

// OpenFile reads and opens a sealed blob from disk.
func OpenFile(path, passphrase string) ([]byte, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sealed file: %w", err)
	}
	return Open(blob, passphrase)
}

// IsSealed reports whether data carries the sealed-blob framing.
func IsSealed(data []byte) bool {
	return len(data) >= len(sealMagic) && string(data[:len(sealMagic)]) == sealMagic
}
