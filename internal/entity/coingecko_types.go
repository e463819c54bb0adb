package entity

// CoinMarket is an element of the CoinGecko /coins/markets response.
type CoinMarket struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	MarketCapRank int     `json:"market_cap_rank"`
	CurrentPrice  float64 `json:"current_price"`
}

// CoinListItem is an element of the CoinGecko /coins/list?include_platform=true response.
// Platforms maps a CoinGecko asset platform id (e.g. "ethereum", "xdai") to a contract address.
type CoinListItem struct {
	ID        string            `json:"id"`
	Symbol    string            `json:"symbol"`
	Name      string            `json:"name"`
	Platforms map[string]string `json:"platforms"`
}
