package provider

import (
	"token_transfer/internal/app/port"
	"token_transfer/internal/domain/entity"
)

type sessionProviderImpl struct {
	account  string
	chainID  uint64
	networks port.NetworkDefinitionProvider
}

// NewSessionProvider creates a SessionProvider for a fixed account and chain.
// An empty account yields a disconnected session.
func NewSessionProvider(account string, chainID uint64, networks port.NetworkDefinitionProvider) port.SessionProvider {
	return &sessionProviderImpl{account: account, chainID: chainID, networks: networks}
}

// Session returns the connected wallet context.
func (p *sessionProviderImpl) Session() entity.Session {
	return entity.Session{
		Account:      p.account,
		ChainID:      p.chainID,
		NativeSymbol: p.networks.NativeSymbol(p.chainID),
		Connected:    p.account != "",
	}
}
