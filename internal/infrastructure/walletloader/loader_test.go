package walletloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"token_transfer/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func writeKeystore(t *testing.T, passphrase string) (string, *keystore.Key) {
	t.Helper()
	priv, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	key := &keystore.Key{Address: crypto.PubkeyToAddress(priv.PublicKey), PrivateKey: priv}
	data, err := keystore.EncryptKey(key, passphrase, keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "UTC--test.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, key
}

func TestKeyLoader_PrivateKey(t *testing.T) {
	priv, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(priv.PublicKey)

	for _, raw := range []string{testKeyHex, "0x" + testKeyHex, "  0x" + testKeyHex + "\n"} {
		_, addr, err := NewKeyLoader(raw, "ignored.json", "", nil, logger.NewNop()).Load()
		require.NoError(t, err)
		assert.Equal(t, want, addr)
	}

	_, _, err = NewKeyLoader("0xnothex", "", "", nil, logger.NewNop()).Load()
	assert.ErrorContains(t, err, "invalid private key")
}

func TestKeyLoader_NoKey(t *testing.T) {
	_, _, err := NewKeyLoader("", "", "", nil, logger.NewNop()).Load()
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestKeyLoader_Keystore(t *testing.T) {
	path, key := writeKeystore(t, "correct horse")

	_, addr, err := NewKeyLoader("", path, "correct horse", nil, logger.NewNop()).Load()
	require.NoError(t, err)
	assert.Equal(t, key.Address, addr)

	_, _, err = NewKeyLoader("", path, "wrong", nil, logger.NewNop()).Load()
	assert.ErrorContains(t, err, "failed to decrypt keystore")

	_, _, err = NewKeyLoader("", filepath.Join(t.TempDir(), "missing.json"), "x", nil, logger.NewNop()).Load()
	assert.ErrorContains(t, err, "failed to read keystore")
}

func TestKeyLoader_KeystorePrompt(t *testing.T) {
	path, key := writeKeystore(t, "from prompt")

	var prompted string
	prompt := func(p string) (string, error) {
		prompted = p
		return "from prompt", nil
	}
	_, addr, err := NewKeyLoader("", path, "", prompt, logger.NewNop()).Load()
	require.NoError(t, err)
	assert.Equal(t, key.Address, addr)
	assert.Equal(t, path, prompted)

	failing := func(string) (string, error) { return "", errors.New("no tty") }
	_, _, err = NewKeyLoader("", path, "", failing, logger.NewNop()).Load()
	assert.ErrorContains(t, err, "failed to read passphrase")
}
