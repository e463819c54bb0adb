package client

import (
	"fmt"
	"sync"
	"time"

	"token_transfer/internal/app/port"
	"token_transfer/internal/domain/entity"
)

const defaultProviderConnectionTimeout = 10 * time.Second

// EVMClientProvider implements the port.BlockchainClientProvider interface.
// Clients are dialed once per chain and reused.
type EVMClientProvider struct {
	clients           map[uint64]*EVMClient
	mu                sync.Mutex
	logger            port.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

var _ port.BlockchainClientProvider = (*EVMClientProvider)(nil)

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(rpcCallTimeout time.Duration, logger port.Logger) *EVMClientProvider {
	return &EVMClientProvider{
		clients:           make(map[uint64]*EVMClient),
		logger:            logger,
		connectionTimeout: defaultProviderConnectionTimeout,
		rpcCallTimeout:    rpcCallTimeout,
	}
}

// GetClient retrieves a blockchain client for the given network definition.
func (p *EVMClientProvider) GetClient(netDef entity.NetworkDefinition) (port.BlockchainClient, error) {
	return p.GetEVMClient(netDef)
}

// GetEVMClient is GetClient returning the concrete client, which the signer wallet is built on.
func (p *EVMClientProvider) GetEVMClient(netDef entity.NetworkDefinition) (*EVMClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.ChainID]; exists {
		p.logger.Debug("Returning cached EVM client", "network", netDef.Name)
		return client, nil
	}

	p.logger.Info("Creating new EVM client", "network", netDef.Name, "rpc_primary", netDef.PrimaryRPCURL)
	newClient, err := NewEVMClient(netDef, p.connectionTimeout, p.rpcCallTimeout)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[netDef.ChainID] = newClient
	return newClient, nil
}

// Close releases every cached connection.
func (p *EVMClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for chainID, c := range p.clients {
		c.ethClient.Close()
		delete(p.clients, chainID)
	}
}
