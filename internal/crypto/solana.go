package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"Solvanity/internal/mnemonic"

	"github.com/btcsuite/btcd/btcutil/base58"
)

type solanaSource struct{}

func (solanaSource) Generate() (Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, err
	}
	return solanaKeypair(pub, priv), nil
}

type solanaMnemonicSource struct {
	passphrase string
}

func (s solanaMnemonicSource) Generate() (Keypair, error) {
	mn, err := mnemonic.NewMnemonic(128)
	if err != nil {
		return Keypair{}, err
	}
	priv, err := mnemonic.SolanaKey(mn, s.passphrase)
	if err != nil {
		return Keypair{}, err
	}
	kp := solanaKeypair(priv.Public().(ed25519.PublicKey), priv)
	kp.Scheme = SchemeSolanaMnemonic
	kp.Mnemonic = mn
	return kp, nil
}

func solanaKeypair(pub ed25519.PublicKey, priv ed25519.PrivateKey) Keypair {
	return Keypair{
		Scheme:  SchemeSolana,
		Address: base58.Encode(pub),
		Public:  pub,
		Secret:  priv,
	}
}

// SolanaFromSecret rebuilds a keypair from a 64-byte secret (seed||pub),
// the layout solana-cli keeps in its JSON key files.
func SolanaFromSecret(secret []byte) (Keypair, error) {
	if len(secret) != ed25519.PrivateKeySize {
		return Keypair{}, fmt.Errorf("solana secret must be %d bytes, got %d", ed25519.PrivateKeySize, len(secret))
	}
	priv := ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize])
	if string(priv[ed25519.SeedSize:]) != string(secret[ed25519.SeedSize:]) {
		return Keypair{}, fmt.Errorf("solana secret: public half does not match seed")
	}
	return solanaKeypair(priv.Public().(ed25519.PublicKey), priv), nil
}

// SolanaFromBase58 parses the base58 secret string produced by SecretString.
func SolanaFromBase58(s string) (Keypair, error) {
	return SolanaFromSecret(base58.Decode(s))
}

func encodeBase58(b []byte) string { return base58.Encode(b) }
