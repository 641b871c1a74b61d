package mnemonic

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"fmt"

	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	bip39 "github.com/tyler-smith/go-bip39"
)

// EVMPathTemplate is the BIP-44 path used for EVM accounts.
const EVMPathTemplate = "m/44'/60'/0'/0/%d"

type Derived struct {
	Mnemonic string
	Index    int
	Path     string
	Priv     *ecdsa.PrivateKey
	Address  string
}

func NewMnemonic(strength int) (string, error) {
	if strength == 0 {
		strength = 128 // 12 words
	}
	entropy, err := bip39.NewEntropy(strength)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// SolanaKey derives the ed25519 key solana-keygen produces for a mnemonic
// without a derivation path: the first 32 bytes of the BIP-39 seed.
func SolanaKey(mn, passphrase string) (ed25519.PrivateKey, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mn, passphrase)
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize]), nil
}

// DeriveEVM derives the EVM account at index from a mnemonic.
func DeriveEVM(mn, passphrase string, index int) (Derived, error) {
	seed := bip39.NewSeed(mn, passphrase)
	w, err := hdwallet.NewFromSeed(seed)
	if err != nil {
		return Derived{}, err
	}
	pathStr := fmt.Sprintf(EVMPathTemplate, index)
	path, err := hdwallet.ParseDerivationPath(pathStr)
	if err != nil {
		return Derived{}, err
	}
	acct, err := w.Derive(path, false)
	if err != nil {
		return Derived{}, err
	}
	priv, err := w.PrivateKey(acct)
	if err != nil {
		return Derived{}, err
	}
	return Derived{
		Mnemonic: mn,
		Index:    index,
		Path:     pathStr,
		Priv:     priv,
		Address:  acct.Address.Hex(),
	}, nil
}
