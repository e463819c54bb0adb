package walletloader

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"token_transfer/internal/app/port"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoKey is returned when neither a private key nor a keystore file is configured.
var ErrNoKey = errors.New("no signing key configured")

// PassphrasePrompt asks the operator for the keystore passphrase.
type PassphrasePrompt func(keystorePath string) (string, error)

// KeyLoader loads the signing key of the connected account.
type KeyLoader struct {
	privateKeyHex string
	keystorePath  string
	passphrase    string
	prompt        PassphrasePrompt
	logger        port.Logger
}

// NewKeyLoader creates a KeyLoader. privateKeyHex takes precedence over keystorePath.
// prompt is only used for a keystore without a configured passphrase and may be nil.
func NewKeyLoader(privateKeyHex, keystorePath, passphrase string, prompt PassphrasePrompt, logger port.Logger) *KeyLoader {
	return &KeyLoader{
		privateKeyHex: strings.TrimSpace(privateKeyHex),
		keystorePath:  keystorePath,
		passphrase:    passphrase,
		prompt:        prompt,
		logger:        logger,
	}
}

// Load returns the private key and its address.
func (l *KeyLoader) Load() (*ecdsa.PrivateKey, common.Address, error) {
	switch {
	case l.privateKeyHex != "":
		key, err := crypto.HexToECDSA(strings.TrimPrefix(l.privateKeyHex, "0x"))
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("invalid private key: %w", err)
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		l.logger.Info("Signing key loaded from environment", "address", addr.Hex())
		return key, addr, nil

	case l.keystorePath != "":
		data, err := os.ReadFile(l.keystorePath)
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("failed to read keystore %s: %w", l.keystorePath, err)
		}
		passphrase := l.passphrase
		if passphrase == "" && l.prompt != nil {
			if passphrase, err = l.prompt(l.keystorePath); err != nil {
				return nil, common.Address{}, fmt.Errorf("failed to read passphrase: %w", err)
			}
		}
		k, err := keystore.DecryptKey(data, passphrase)
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("failed to decrypt keystore %s: %w", l.keystorePath, err)
		}
		l.logger.Info("Signing key loaded from keystore", "address", k.Address.Hex(), "path", l.keystorePath)
		return k.PrivateKey, k.Address, nil
	}
	return nil, common.Address{}, ErrNoKey
}
