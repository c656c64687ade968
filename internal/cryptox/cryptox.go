// Package cryptox implements at-rest sealing for the persisted session.
//
// The bearer token and the cached user record survive restarts in the local
// database; they are sealed with AES-GCM under a key derived from a
// per-device secret so a copied database file alone does not leak a live
// session.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// ErrSealedDataInvalid indicates a sealed blob that is too short or fails
// authentication on open.
var ErrSealedDataInvalid = errors.New("sealed data invalid")

const nonceSize = 12

// DeriveSealKey derives a 32-byte AES key from the device secret and salt
// using argon2id.
func DeriveSealKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// SealValue serializes v to JSON and encrypts it with AES-GCM. The returned
// blob is nonce||ciphertext; a fresh random nonce is generated per call.
func SealValue(v any, key []byte) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return append(nonce, aesgcm.Seal(nil, nonce, plaintext, nil)...), nil
}

// OpenValue decrypts a blob produced by SealValue and unmarshals the JSON
// payload into v. Tampered or truncated blobs yield ErrSealedDataInvalid.
func OpenValue(blob []byte, key []byte, v any) error {
	if len(blob) < nonceSize {
		return ErrSealedDataInvalid
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSealedDataInvalid, err)
	}
	return json.Unmarshal(plaintext, v)
}
