// Package keystore manages the per-device secret used to seal the persisted
// session at rest. The secret lives in a separate 0600 file next to the
// database, so copying the database alone is not enough to replay a session.
package keystore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/campuslink/internal/common"
	"github.com/dmitrijs2005/campuslink/internal/cryptox"
)

const secretFileSize = 64 // 32 bytes secret + 32 bytes salt

// SealKey loads the device secret file at path, creating it with fresh
// random material on first run, and derives the session seal key from it.
func SealKey(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		raw = common.GenerateRandByteArray(secretFileSize)
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create keystore dir: %w", err)
		}
		if err := os.WriteFile(path, raw, 0o600); err != nil {
			return nil, fmt.Errorf("write device secret: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("read device secret: %w", err)
	}

	if len(raw) != secretFileSize {
		return nil, fmt.Errorf("device secret file %s has unexpected size %d", path, len(raw))
	}

	secret, salt := raw[:32], raw[32:]
	return cryptox.DeriveSealKey(secret, salt), nil
}
