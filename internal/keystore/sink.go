package keystore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"Solvanity/internal/crypto"
	"Solvanity/internal/logsink"
)

// record is one line of found.jsonl. Secrets are omitted when the key is
// stored encrypted.
type record struct {
	Scheme     string `json:"scheme"`
	Address    string `json:"address"`
	PrivateKey string `json:"private_key,omitempty"`
	Mnemonic   string `json:"mnemonic,omitempty"`
	Path       string `json:"path,omitempty"`
	Keystore   string `json:"keystore,omitempty"`
}

// Options configures a FileSink.
type Options struct {
	BaseDir  string // e.g. "keys"
	Scheme   crypto.Scheme
	Password string // EVM only: store V3 keystores instead of raw keys
	PassHint string
}

// FileSink persists found keys under one run directory. It is used from the
// search coordinator only.
type FileSink struct {
	dir      string
	password string
}

func NewFileSink(opt Options) (*FileSink, error) {
	if opt.Password != "" && opt.Scheme.Curve() != "secp256k1" {
		return nil, fmt.Errorf("keystore encryption is not supported for scheme %s", opt.Scheme)
	}
	dir, err := logsink.MakeRunDir(opt.BaseDir, string(opt.Scheme), opt.Password != "")
	if err != nil {
		return nil, err
	}
	if err := logsink.WriteHint(dir, opt.PassHint); err != nil {
		return nil, fmt.Errorf("write hint: %w", err)
	}
	return &FileSink{dir: dir, password: opt.Password}, nil
}

// Dir is the run directory the sink writes into.
func (s *FileSink) Dir() string { return s.dir }

// Persist writes the key files for kp and appends it to found.jsonl.
//
//	Solana: key_<addr>.txt (base58 secret), key_<addr>.json (solana-cli byte array)
//	EVM:    key_<addr>.txt (0x-hex secret) or key_<addr>.keystore.json
//
// A key is either fully stored (all files plus its record) or none of the
// files it created are left behind.
func (s *FileSink) Persist(kp crypto.Keypair) (err error) {
	var written []string
	defer func() {
		if err == nil {
			return
		}
		for _, p := range written {
			_ = os.Remove(p)
		}
	}()
	write := func(path string, data []byte) error {
		if err := logsink.WriteSecret(path, data); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	rec := record{
		Scheme:   string(kp.Scheme),
		Address:  kp.Address,
		Mnemonic: kp.Mnemonic,
		Path:     kp.Path,
	}
	base := filepath.Join(s.dir, "key_"+kp.Address)

	switch {
	case kp.Scheme.Curve() == "secp256k1" && s.password != "":
		blob, err := crypto.KeystoreJSON(kp, s.password)
		if err != nil {
			return fmt.Errorf("keystore encrypt %s: %w", kp.Address, err)
		}
		if err := write(base+".keystore.json", blob); err != nil {
			return err
		}
		rec.Keystore = filepath.Base(base + ".keystore.json")
		rec.Mnemonic = ""
	case kp.Scheme.Curve() == "secp256k1":
		if err := write(base+".txt", []byte(kp.SecretString())); err != nil {
			return err
		}
		rec.PrivateKey = kp.SecretString()
	default:
		if err := write(base+".txt", []byte(kp.SecretString())); err != nil {
			return err
		}
		arr, err := json.Marshal(byteArray(kp.Secret))
		if err != nil {
			return err
		}
		if err := write(base+".json", arr); err != nil {
			return err
		}
		rec.PrivateKey = kp.SecretString()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return AppendJSONL(filepath.Join(s.dir, "found.jsonl"), line)
}

// byteArray marshals as a JSON array of numbers instead of base64.
type byteArray []byte

func (b byteArray) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

func AppendJSONL(path string, jsonBlob []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := logsink.OpenAppend(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(jsonBlob, '\n')); err != nil {
		return err
	}
	return nil
}
