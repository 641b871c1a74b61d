package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"Solvanity/internal/mnemonic"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Scrypt cost used for keystore encryption.
var (
	ScryptN = keystore.StandardScryptN
	ScryptP = keystore.StandardScryptP
)

type evmSource struct{}

func (evmSource) Generate() (Keypair, error) {
	priv, err := gethcrypto.GenerateKey()
	if err != nil {
		return Keypair{}, err
	}
	return evmKeypair(priv), nil
}

type evmMnemonicSource struct {
	passphrase string
}

func (s evmMnemonicSource) Generate() (Keypair, error) {
	mn, err := mnemonic.NewMnemonic(128)
	if err != nil {
		return Keypair{}, err
	}
	d, err := mnemonic.DeriveEVM(mn, s.passphrase, 0)
	if err != nil {
		return Keypair{}, err
	}
	kp := evmKeypair(d.Priv)
	kp.Scheme = SchemeEVMMnemonic
	kp.Mnemonic = d.Mnemonic
	kp.Path = d.Path
	return kp, nil
}

// evmKeypair uses the EIP-55 checksummed address without its 0x prefix as the
// matchable address, so prefix patterns apply to the first hex digit.
func evmKeypair(priv *ecdsa.PrivateKey) Keypair {
	return Keypair{
		Scheme:  SchemeEVM,
		Address: strings.TrimPrefix(gethcrypto.PubkeyToAddress(priv.PublicKey).Hex(), "0x"),
		Public:  gethcrypto.FromECDSAPub(&priv.PublicKey),
		Secret:  gethcrypto.FromECDSA(priv),
	}
}

// EVMFromHex parses a 0x-prefixed or bare hex private key.
func EVMFromHex(s string) (Keypair, error) {
	priv, err := gethcrypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return Keypair{}, fmt.Errorf("parse evm private key: %w", err)
	}
	return evmKeypair(priv), nil
}

// KeystoreJSON encrypts an EVM keypair into a V3 keystore blob.
func KeystoreJSON(kp Keypair, password string) ([]byte, error) {
	if kp.Scheme.Curve() != "secp256k1" {
		return nil, fmt.Errorf("keystore encryption needs a secp256k1 key, got %s", kp.Scheme)
	}
	priv, err := gethcrypto.ToECDSA(kp.Secret)
	if err != nil {
		return nil, err
	}
	key := &keystore.Key{
		Address:    gethcrypto.PubkeyToAddress(priv.PublicKey),
		PrivateKey: priv,
	}
	return keystore.EncryptKey(key, password, ScryptN, ScryptP)
}

// EVMFromKeystore decrypts a V3 keystore blob.
func EVMFromKeystore(blob []byte, password string) (Keypair, error) {
	key, err := keystore.DecryptKey(blob, password)
	if err != nil {
		return Keypair{}, err
	}
	return evmKeypair(key.PrivateKey), nil
}
