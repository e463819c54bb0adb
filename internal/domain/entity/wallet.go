package entity

// Session is the connected wallet context: which account is connected and on which chain.
type Session struct {
	Account      string `json:"account"`
	ChainID      uint64 `json:"chainId"`
	NativeSymbol string `json:"nativeSymbol"`
	Connected    bool   `json:"isConnected"`
}
