package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MakeRunDir creates <base>/<scheme>/<DD.MM.YYYY>/<scheme_HH-MM-SS> (or
// <scheme_keystore_HH-MM-SS> when keys are encrypted) and returns its path.
func MakeRunDir(base, scheme string, encrypted bool) (string, error) {
	now := time.Now()
	date := now.Format("02.01.2006")
	timeDir := now.Format("15-04-05")

	name := scheme + "_" + timeDir
	if encrypted {
		name = scheme + "_keystore_" + timeDir
	}

	dir := filepath.Join(base, scheme, date, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	return dir, nil
}

func OpenAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}
