package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"Solvanity/internal/crypto"
	"Solvanity/pkg/logx"
)

// Options controls a verification job.
type Options struct {
	Dir      string // run directory written by the key sink
	Password string // needed for *.keystore.json
}

// Failure describes one key file that did not check out.
type Failure struct {
	File string
	Err  error
}

type Report struct {
	Total    int
	OK       int
	Failures []Failure
}

var errMismatch = errors.New("derived address does not match file name")

// Run re-derives the address of every key_<address>.* file in opt.Dir and
// compares it with the address in the file name:
//
//	key_<addr>.json          solana-cli byte array
//	key_<addr>.txt           base58 (Solana) or 0x-hex (EVM) secret
//	key_<addr>.keystore.json V3 keystore, decrypted with opt.Password
func Run(ctx context.Context, opt Options) (*Report, error) {
	app := logx.With("verify")

	files, err := collectKeyFiles(opt.Dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		app.Warnw("no key files found", "dir", opt.Dir)
		return &Report{}, nil
	}

	app.Infow("verify started", "dir", opt.Dir, "files", len(files))
	start := time.Now()
	rep := &Report{}

	for _, p := range files {
		select {
		case <-ctx.Done():
			return rep, ctx.Err()
		default:
		}

		rep.Total++
		if err := checkFile(p, opt.Password); err != nil {
			rep.Failures = append(rep.Failures, Failure{File: p, Err: err})
			app.Errorw("verify failed", "file", filepath.Base(p), "err", err)
			continue
		}
		rep.OK++
		app.Debugw("verified", "file", filepath.Base(p))
	}

	app.Infow("verify finished", "total", rep.Total, "ok", rep.OK, "failed", len(rep.Failures), "elapsed", time.Since(start).String())
	return rep, nil
}

func collectKeyFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}
	var files []string
	for _, de := range entries {
		if de.IsDir() || !strings.HasPrefix(de.Name(), "key_") {
			continue
		}
		if strings.HasSuffix(de.Name(), ".json") || strings.HasSuffix(de.Name(), ".txt") {
			files = append(files, filepath.Join(dir, de.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func checkFile(path, password string) error {
	name := filepath.Base(path)
	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var want string
	var kp crypto.Keypair
	switch {
	case strings.HasSuffix(name, ".keystore.json"):
		want = strings.TrimSuffix(strings.TrimPrefix(name, "key_"), ".keystore.json")
		if password == "" {
			return errors.New("keystore file needs a password")
		}
		kp, err = crypto.EVMFromKeystore(blob, password)
	case strings.HasSuffix(name, ".json"):
		want = strings.TrimSuffix(strings.TrimPrefix(name, "key_"), ".json")
		var arr []byte
		arr, err = decodeByteArray(blob)
		if err == nil {
			kp, err = crypto.SolanaFromSecret(arr)
		}
	default:
		want = strings.TrimSuffix(strings.TrimPrefix(name, "key_"), ".txt")
		kp, err = parseTextSecret(strings.TrimSpace(string(blob)))
	}
	if err != nil {
		return err
	}
	if kp.Address != want {
		return fmt.Errorf("%w: got %s", errMismatch, kp.Address)
	}
	return nil
}

func parseTextSecret(s string) (crypto.Keypair, error) {
	if strings.HasPrefix(s, "0x") {
		return crypto.EVMFromHex(s)
	}
	return crypto.SolanaFromBase58(s)
}

func decodeByteArray(blob []byte) ([]byte, error) {
	var ints []int
	if err := json.Unmarshal(blob, &ints); err != nil {
		return nil, fmt.Errorf("invalid key json: %w", err)
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("invalid key json: byte %d out of range", i)
		}
		out[i] = byte(v)
	}
	return out, nil
}
