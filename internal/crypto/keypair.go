package crypto

import (
	"fmt"
)

type Scheme string

const (
	SchemeSolana         Scheme = "solana"
	SchemeSolanaMnemonic Scheme = "solana-mnemonic"
	SchemeEVM            Scheme = "evm"
	SchemeEVMMnemonic    Scheme = "evm-mnemonic"
)

// Curve reports the key family behind a scheme.
func (s Scheme) Curve() string {
	switch s {
	case SchemeEVM, SchemeEVMMnemonic:
		return "secp256k1"
	default:
		return "ed25519"
	}
}

// Keypair is one generated key and its address. It is never mutated after
// Generate returns and is passed around by value.
type Keypair struct {
	Scheme  Scheme
	Address string // string matched by the predicate
	Public  []byte
	Secret  []byte // ed25519: seed||pub (64 bytes); secp256k1: scalar (32 bytes)

	Mnemonic string // mnemonic schemes only
	Path     string // evm-mnemonic only
}

// SecretString renders the secret the way the target wallet imports it:
// base58 for Solana, 0x-hex for EVM.
func (k Keypair) SecretString() string {
	if k.Scheme.Curve() == "secp256k1" {
		return fmt.Sprintf("0x%x", k.Secret)
	}
	return encodeBase58(k.Secret)
}

// Source produces fresh keypairs. A Source is owned by a single worker.
type Source interface {
	Generate() (Keypair, error)
}

// NewSource returns an independent source for scheme. Passphrase is the
// BIP-39 passphrase for mnemonic schemes and is ignored otherwise.
func NewSource(scheme Scheme, passphrase string) (Source, error) {
	switch scheme {
	case SchemeSolana, "":
		return solanaSource{}, nil
	case SchemeSolanaMnemonic:
		return solanaMnemonicSource{passphrase: passphrase}, nil
	case SchemeEVM:
		return evmSource{}, nil
	case SchemeEVMMnemonic:
		return evmMnemonicSource{passphrase: passphrase}, nil
	default:
		return nil, fmt.Errorf("unknown scheme %q", scheme)
	}
}
