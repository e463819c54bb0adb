package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"token_transfer/internal/app/port"
	"token_transfer/internal/domain/entity"
	"token_transfer/internal/pkg/utils"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Backend is the subset of an Ethereum node connection the wallet client needs.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Approver is consulted with the fully built transaction right before it is signed.
// Returning an error aborts the transaction; entity.ErrUserRejected marks an operator decline.
type Approver func(ctx context.Context, tx *types.Transaction) error

// AutoApprove signs every transaction without asking.
func AutoApprove(context.Context, *types.Transaction) error { return nil }

// SignerWallet implements port.WalletClient with a local private key.
type SignerWallet struct {
	backend      Backend
	netDef       entity.NetworkDefinition
	key          *ecdsa.PrivateKey
	from         common.Address
	approve      Approver
	pollInterval time.Duration
	logger       port.Logger
}

var _ port.WalletClient = (*SignerWallet)(nil)

// NewSignerWallet creates a wallet client signing with key on the given network.
func NewSignerWallet(backend Backend, netDef entity.NetworkDefinition, key *ecdsa.PrivateKey, approve Approver, pollInterval time.Duration, logger port.Logger) *SignerWallet {
	if approve == nil {
		approve = AutoApprove
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &SignerWallet{
		backend:      backend,
		netDef:       netDef,
		key:          key,
		from:         crypto.PubkeyToAddress(key.PublicKey),
		approve:      approve,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Address returns the signing account.
func (w *SignerWallet) Address() common.Address {
	return w.from
}

// NativeBalance returns the native coin balance of account.
func (w *SignerWallet) NativeBalance(ctx context.Context, account string) (*entity.BalanceInfo, error) {
	value, err := w.backend.BalanceAt(ctx, common.HexToAddress(account), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch native balance: %w", err)
	}
	return balanceInfo(value, w.netDef.Decimals, w.netDef.NativeSymbol), nil
}

// TokenBalance returns the ERC-20 balance of account for the token contract, with the token's own decimals.
func (w *SignerWallet) TokenBalance(ctx context.Context, account string, token string) (*entity.BalanceInfo, error) {
	contract := bind.NewBoundContract(common.HexToAddress(token), erc20(), w.backend, w.backend, w.backend)
	opts := &bind.CallOpts{Context: ctx}

	var out []interface{}
	if err := contract.Call(opts, &out, "balanceOf", common.HexToAddress(account)); err != nil {
		return nil, fmt.Errorf("balanceOf on %s: %w", token, err)
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", out[0])
	}

	out = nil
	if err := contract.Call(opts, &out, "decimals"); err != nil {
		return nil, fmt.Errorf("decimals on %s: %w", token, err)
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return nil, fmt.Errorf("unexpected decimals result type %T", out[0])
	}

	symbol := ""
	out = nil
	if err := contract.Call(opts, &out, "symbol"); err == nil && len(out) > 0 {
		symbol, _ = out[0].(string)
	}
	return balanceInfo(value, decimals, symbol), nil
}

// SendValue transfers native coin to the recipient and returns the transaction hash.
func (w *SignerWallet) SendValue(ctx context.Context, to string, value *big.Int) (string, error) {
	recipient := common.HexToAddress(to)
	gas, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{From: w.from, To: &recipient, Value: value})
	if err != nil {
		return "", err
	}

	opts, err := w.transactOpts(ctx)
	if err != nil {
		return "", err
	}
	opts.Value = value
	opts.GasLimit = gas

	// A bound contract with an empty ABI is a plain value transfer; GasLimit is preset
	// so the transactor skips its contract-code check.
	tx, err := bind.NewBoundContract(recipient, abi.ABI{}, w.backend, w.backend, w.backend).RawTransact(opts, nil)
	if err != nil {
		return "", err
	}
	w.logger.Info("Native transfer sent", "hash", tx.Hash().Hex(), "to", recipient.Hex(), "value", value.String())
	return tx.Hash().Hex(), nil
}

// WriteContract invokes a state-changing contract method and returns the transaction hash.
func (w *SignerWallet) WriteContract(ctx context.Context, call entity.ContractCall) (string, error) {
	parsed := erc20()
	if call.ABI != "" && call.ABI != entity.ERC20ABI {
		var err error
		parsed, err = abi.JSON(strings.NewReader(call.ABI))
		if err != nil {
			return "", fmt.Errorf("invalid contract ABI: %w", err)
		}
	}

	opts, err := w.transactOpts(ctx)
	if err != nil {
		return "", err
	}
	tx, err := bind.NewBoundContract(call.Contract, parsed, w.backend, w.backend, w.backend).Transact(opts, call.Method, call.Args...)
	if err != nil {
		return "", err
	}
	w.logger.Info("Contract call sent", "hash", tx.Hash().Hex(), "contract", call.Contract.Hex(), "method", call.Method)
	return tx.Hash().Hex(), nil
}

// WaitForReceipt polls for the receipt of hash until it is mined or ctx is done.
func (w *SignerWallet) WaitForReceipt(ctx context.Context, hash string) (*entity.Receipt, error) {
	txHash := common.HexToHash(hash)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := w.backend.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			return &entity.Receipt{
				TxHash:      receipt.TxHash.Hex(),
				BlockNumber: receipt.BlockNumber.Uint64(),
				GasUsed:     receipt.GasUsed,
				Success:     receipt.Status == types.ReceiptStatusSuccessful,
			}, nil
		case !errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("failed to fetch receipt for %s: %w", hash, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *SignerWallet) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(w.key, new(big.Int).SetUint64(w.netDef.ChainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx

	sign := opts.Signer
	opts.Signer = func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
		if err := w.approve(ctx, tx); err != nil {
			return nil, err
		}
		return sign(addr, tx)
	}
	return opts, nil
}

func balanceInfo(value *big.Int, decimals uint8, symbol string) *entity.BalanceInfo {
	if value == nil {
		value = big.NewInt(0)
	}
	return &entity.BalanceInfo{
		Value:     value,
		Raw:       value.String(),
		Decimals:  decimals,
		Symbol:    symbol,
		Formatted: utils.FormatBigInt(value, decimals),
	}
}
