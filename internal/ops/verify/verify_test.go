package verify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"Solvanity/internal/crypto"
	"Solvanity/internal/keystore"

	gethks "github.com/ethereum/go-ethereum/accounts/keystore"
)

func init() {
	crypto.ScryptN, crypto.ScryptP = gethks.LightScryptN, gethks.LightScryptP
}

func persistKeys(t *testing.T, opt keystore.Options, n int) (string, []crypto.Keypair) {
	t.Helper()
	sink, err := keystore.NewFileSink(opt)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	src, err := crypto.NewSource(opt.Scheme, "")
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	var keys []crypto.Keypair
	for i := 0; i < n; i++ {
		kp, err := src.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if err := sink.Persist(kp); err != nil {
			t.Fatalf("Persist: %v", err)
		}
		keys = append(keys, kp)
	}
	return sink.Dir(), keys
}

func TestRunSolanaOK(t *testing.T) {
	dir, _ := persistKeys(t, keystore.Options{BaseDir: t.TempDir(), Scheme: crypto.SchemeSolana}, 3)

	rep, err := Run(context.Background(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// .txt and .json per key
	if rep.Total != 6 || rep.OK != 6 || len(rep.Failures) != 0 {
		t.Fatalf("report = %+v, want 6/6 ok", rep)
	}
}

func TestRunDetectsTamperedFile(t *testing.T) {
	dir, keys := persistKeys(t, keystore.Options{BaseDir: t.TempDir(), Scheme: crypto.SchemeSolana}, 2)

	// swap the secret of key 0 into key 1's file
	src := filepath.Join(dir, "key_"+keys[0].Address+".txt")
	dst := filepath.Join(dir, "key_"+keys[1].Address+".txt")
	blob, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, blob, 0o600); err != nil {
		t.Fatal(err)
	}

	rep, err := Run(context.Background(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Failures) != 1 || rep.OK != 3 {
		t.Fatalf("report = %+v, want exactly one failure", rep)
	}
	if rep.Failures[0].File != dst {
		t.Fatalf("failed file = %s, want %s", rep.Failures[0].File, dst)
	}
	if !errors.Is(rep.Failures[0].Err, errMismatch) {
		t.Fatalf("err = %v, want address mismatch", rep.Failures[0].Err)
	}
}

func TestRunEVMRawAndKeystore(t *testing.T) {
	raw, _ := persistKeys(t, keystore.Options{BaseDir: t.TempDir(), Scheme: crypto.SchemeEVM}, 2)
	rep, err := Run(context.Background(), Options{Dir: raw})
	if err != nil {
		t.Fatalf("Run raw: %v", err)
	}
	if rep.Total != 2 || rep.OK != 2 {
		t.Fatalf("raw report = %+v", rep)
	}

	enc, _ := persistKeys(t, keystore.Options{BaseDir: t.TempDir(), Scheme: crypto.SchemeEVM, Password: "pw"}, 1)
	rep, err = Run(context.Background(), Options{Dir: enc, Password: "pw"})
	if err != nil {
		t.Fatalf("Run keystore: %v", err)
	}
	if rep.Total != 1 || rep.OK != 1 {
		t.Fatalf("keystore report = %+v", rep)
	}

	rep, err = Run(context.Background(), Options{Dir: enc, Password: "wrong"})
	if err != nil {
		t.Fatalf("Run keystore: %v", err)
	}
	if len(rep.Failures) != 1 {
		t.Fatalf("wrong password report = %+v, want one failure", rep)
	}
}

func TestRunEmptyAndMissingDir(t *testing.T) {
	rep, err := Run(context.Background(), Options{Dir: t.TempDir()})
	if err != nil || rep.Total != 0 {
		t.Fatalf("empty dir: rep=%+v err=%v", rep, err)
	}
	if _, err := Run(context.Background(), Options{Dir: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestDecodeByteArrayRejectsOutOfRange(t *testing.T) {
	if _, err := decodeByteArray([]byte(`[1, 256]`)); err == nil {
		t.Fatal("expected error for 256")
	}
	got, err := decodeByteArray([]byte(`[0, 255]`))
	if err != nil || len(got) != 2 || got[1] != 255 {
		t.Fatalf("got %v, %v", got, err)
	}
}
