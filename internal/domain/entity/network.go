package entity

import "strconv"

// NetworkDefinition holds the configuration for a specific blockchain network.
// This structure is defined at the domain level to be used across application and infrastructure layers.
type NetworkDefinition struct {
	ChainID           uint64            `json:"chainId" yaml:"chainId"`
	Name              string            `json:"name" yaml:"name"`
	Identifier        string            `json:"identifier" yaml:"identifier"`
	NativeSymbol      string            `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals          uint8             `json:"decimals" yaml:"decimals"`
	PrimaryRPCURL     string            `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs   []string          `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL  string            `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	CoinGeckoPlatform string            `json:"coinGeckoPlatform,omitempty" yaml:"coinGeckoPlatform,omitempty"`
	WellKnownTokens   map[string]string `json:"wellKnownTokens,omitempty" yaml:"wellKnownTokens,omitempty"` // symbol key -> contract address
}

// ChainKey returns the chain id in the string form used by token platform maps.
func (n NetworkDefinition) ChainKey() string {
	return strconv.FormatUint(n.ChainID, 10)
}

// TxURL returns the block explorer link for a transaction hash, or "" when the network has no explorer.
func (n NetworkDefinition) TxURL(hash string) string {
	if n.BlockExplorerURL == "" || hash == "" {
		return ""
	}
	return n.BlockExplorerURL + "/tx/" + hash
}
