package entity

// OneInchTokenList is the body of the 1inch token list endpoint.
// Tokens is keyed by contract address.
type OneInchTokenList struct {
	Tokens map[string]OneInchToken `json:"tokens"`
}

// OneInchToken is a token entry of the 1inch token list.
type OneInchToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	LogoURI  string `json:"logoURI,omitempty"`
}

// OneInchBalance is the body of the 1inch balance endpoint. Balance is a base-10 integer string.
type OneInchBalance struct {
	Balance string `json:"balance"`
}
