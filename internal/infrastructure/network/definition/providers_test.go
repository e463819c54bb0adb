package networkdefinition

import (
	"testing"

	"token_transfer/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkDefinitionProvider_Lookup(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewNop(), nil)

	all := p.GetAllNetworkDefinitions()
	require.Len(t, all, 4)
	ids := make([]uint64, 0, len(all))
	for _, d := range all {
		ids = append(ids, d.ChainID)
	}
	assert.Equal(t, []uint64{1, 5, 100, 11155111}, ids)

	def, ok := p.GetNetworkDefinitionByChainID(100)
	require.True(t, ok)
	assert.Equal(t, "gnosis", def.Identifier)

	def, ok = p.GetNetworkDefinitionByName("sepolia")
	require.True(t, ok)
	assert.Equal(t, uint64(11155111), def.ChainID)

	_, ok = p.GetNetworkDefinitionByName("polygon")
	assert.False(t, ok)
	_, ok = p.GetNetworkDefinitionByChainID(137)
	assert.False(t, ok)
}

func TestNetworkDefinitionProvider_NativeSymbol(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewNop(), nil)

	assert.Equal(t, "ETH", p.NativeSymbol(1))
	assert.Equal(t, "ETH", p.NativeSymbol(5))
	assert.Equal(t, "ETH", p.NativeSymbol(11155111))
	assert.Equal(t, "xDAI", p.NativeSymbol(100))
	assert.Equal(t, UnknownNativeSymbol, p.NativeSymbol(56))
}

func TestNetworkDefinitionProvider_RPCOverride(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewNop(), map[string]string{"ethereum": "http://localhost:8545", "gnosis": ""})

	def, ok := p.GetNetworkDefinitionByChainID(1)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8545", def.PrimaryRPCURL)
	assert.Equal(t, Ethereum.PrimaryRPCURL, def.FallbackRPCURLs[0], "previous primary becomes the first fallback")
	assert.Len(t, Ethereum.FallbackRPCURLs, 2, "package definition untouched")

	def, _ = p.GetNetworkDefinitionByChainID(100)
	assert.Equal(t, Gnosis.PrimaryRPCURL, def.PrimaryRPCURL, "empty override ignored")
}

func TestWellKnownTokens(t *testing.T) {
	eth := WellKnownTokens(Ethereum)
	require.Len(t, eth, 2)
	assert.Equal(t, "USDC", eth[0].Symbol)
	assert.Equal(t, uint8(6), eth[0].Decimals)
	assert.Equal(t, uint64(1), eth[0].ChainID)
	assert.Equal(t, "stETH", eth[1].Symbol)
	assert.Equal(t, "0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84", eth[1].Address)

	gnosis := WellKnownTokens(Gnosis)
	require.Len(t, gnosis, 1)
	assert.Equal(t, "USDC", gnosis[0].Symbol)
}
