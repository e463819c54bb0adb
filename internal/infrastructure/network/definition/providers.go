package networkdefinition

import (
	"fmt"
	"sort"

	"token_transfer/internal/app/port"
	"token_transfer/internal/domain/entity"
)

// UnknownNativeSymbol is reported for chains outside the registry.
const UnknownNativeSymbol = "Unknown"

// Well-known token keys.
const (
	USDC  = "USDC"
	STETH = "STETH"
)

// NetworkDefinitionProvider is the static chain registry.
type NetworkDefinitionProvider struct {
	logger  port.Logger
	byChain map[uint64]entity.NetworkDefinition
}

var _ port.NetworkDefinitionProvider = (*NetworkDefinitionProvider)(nil)

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:           1,
		Name:              "Ethereum Mainnet",
		Identifier:        "ethereum",
		NativeSymbol:      "ETH",
		Decimals:          18,
		PrimaryRPCURL:     "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:   []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL:  "https://etherscan.io",
		CoinGeckoPlatform: "ethereum",
		WellKnownTokens: map[string]string{
			USDC:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			STETH: "0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84",
		},
	}
	Goerli = entity.NetworkDefinition{
		ChainID:          5,
		Name:             "Goerli Testnet",
		Identifier:       "goerli",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-goerli-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth_goerli"},
		BlockExplorerURL: "https://goerli.etherscan.io",
		WellKnownTokens: map[string]string{
			USDC:  "0x07865c6E87B9F70255377e024ace6630C1Eaa37F",
			STETH: "0x1643E812aE58766192Cf7D2Cf9567dF2C37e9B7F",
		},
	}
	Sepolia = entity.NetworkDefinition{
		ChainID:          11155111,
		Name:             "Sepolia Testnet",
		Identifier:       "sepolia",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-sepolia-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth_sepolia", "https://rpc.sepolia.org"},
		BlockExplorerURL: "https://sepolia.etherscan.io",
		WellKnownTokens: map[string]string{
			USDC:  "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238",
			STETH: "0x3F1c547b21f65e10480dA3B332E7d801E61deB35",
		},
	}
	Gnosis = entity.NetworkDefinition{
		ChainID:           100,
		Name:              "Gnosis Chain",
		Identifier:        "gnosis",
		NativeSymbol:      "xDAI",
		Decimals:          18,
		PrimaryRPCURL:     "https://0xrpc.io/gno",
		FallbackRPCURLs:   []string{"https://rpc.ankr.com/gnosis", "https://gnosis.publicnode.com"},
		BlockExplorerURL:  "https://gnosisscan.io",
		CoinGeckoPlatform: "xdai",
		WellKnownTokens: map[string]string{
			// no stETH deployment on Gnosis
			USDC: "0xDDAfbb505ad214D7b80b1f830fcCc89B60fb7A83",
		},
	}
)

// WellKnownTokenInfo describes the metadata of a well-known token, independent of chain.
var WellKnownTokenInfo = map[string]entity.TokenInfo{ //nolint:gochecknoglobals
	USDC:  {Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	STETH: {Symbol: "stETH", Name: "Staked ETH", Decimals: 18},
}

// NewNetworkDefinitionProvider creates the registry. RPC overrides (keyed by identifier)
// replace the primary RPC URL of the matching chain.
func NewNetworkDefinitionProvider(log port.Logger, rpcOverrides map[string]string) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:  log,
		byChain: make(map[uint64]entity.NetworkDefinition),
	}
	for _, def := range []entity.NetworkDefinition{Ethereum, Goerli, Sepolia, Gnosis} {
		if url, ok := rpcOverrides[def.Identifier]; ok && url != "" {
			p.logger.Debug(fmt.Sprintf("Overriding primary RPC for '%s'", def.Name), "rpc", url)
			def.FallbackRPCURLs = append([]string{def.PrimaryRPCURL}, def.FallbackRPCURLs...)
			def.PrimaryRPCURL = url
		}
		p.byChain[def.ChainID] = def
	}
	p.logger.Info(fmt.Sprintf("NetworkDefinitionProvider initialized. Supported networks: %d", len(p.byChain)))
	return p
}

// GetAllNetworkDefinitions returns every supported network ordered by chain id.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defs := make([]entity.NetworkDefinition, 0, len(p.byChain))
	for _, def := range p.byChain {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ChainID < defs[j].ChainID })
	return defs
}

// GetNetworkDefinitionByChainID returns a specific network definition by its chain ID.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := p.byChain[chainID]
	return def, ok
}

// GetNetworkDefinitionByName returns a network definition by its identifier.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	for _, def := range p.byChain {
		if def.Identifier == identifier {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

// NativeSymbol returns the native token symbol for a chain, or UnknownNativeSymbol.
func (p *NetworkDefinitionProvider) NativeSymbol(chainID uint64) string {
	if def, ok := p.GetNetworkDefinitionByChainID(chainID); ok {
		return def.NativeSymbol
	}
	return UnknownNativeSymbol
}

// WellKnownTokens returns the well-known tokens deployed on a network as TokenInfo values.
func WellKnownTokens(netDef entity.NetworkDefinition) []entity.TokenInfo {
	tokens := make([]entity.TokenInfo, 0, len(netDef.WellKnownTokens))
	for key, address := range netDef.WellKnownTokens {
		meta, ok := WellKnownTokenInfo[key]
		if !ok {
			continue
		}
		meta.ChainID = netDef.ChainID
		meta.Address = address
		tokens = append(tokens, meta)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Symbol < tokens[j].Symbol })
	return tokens
}
