package entity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TokenMode selects between a native-coin transfer and an ERC-20 transfer.
type TokenMode string

const (
	ModeNative TokenMode = "native"
	ModeERC20  TokenMode = "erc20"
)

// Outcome is the coarse status of the latest transfer attempt.
type Outcome string

const (
	OutcomeIdle               Outcome = "idle"
	OutcomeValidationRejected Outcome = "validation-rejected"
	OutcomeSubmittedPending   Outcome = "submitted-pending"
	OutcomeConfirmedSuccess   Outcome = "confirmed-success"
	OutcomeFailed             Outcome = "failed"
)

// TransferRequest is the user's input for a single submission attempt.
type TransferRequest struct {
	Recipient    string    `json:"recipient"`
	Amount       string    `json:"amount"`
	Mode         TokenMode `json:"mode"`
	TokenAddress string    `json:"tokenAddress,omitempty"`
}

// ValidatedTransfer is a TransferRequest that passed validation and is ready for dispatch.
type ValidatedTransfer struct {
	Request   TransferRequest
	Recipient common.Address
	Token     common.Address
	Value     *big.Int // amount in the token's smallest unit
}

// ContractCall describes a state-changing contract invocation.
type ContractCall struct {
	Contract common.Address
	ABI      string
	Method   string
	Args     []any
}

// Receipt is the confirmation of a mined transaction.
type Receipt struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
	Success     bool   `json:"success"`
}

// TransferState is the observable state of the transfer form and of the latest submission.
type TransferState struct {
	Recipient     string    `json:"recipient"`
	Amount        string    `json:"amount"`
	Mode          TokenMode `json:"mode"`
	SelectedToken string    `json:"selectedToken,omitempty"`
	SearchQuery   string    `json:"searchQuery"`
	Error         string    `json:"error,omitempty"`
	Estimating    bool      `json:"isEstimatingGas"`
	Pending       bool      `json:"isPending"`
	Confirming    bool      `json:"isConfirming"`
	Success       bool      `json:"isSuccess"`
	Hash          string    `json:"hash,omitempty"`
	ExplorerURL   string    `json:"explorerUrl,omitempty"`
	Outcome       Outcome   `json:"outcome"`
	CanSubmit     bool      `json:"canSubmit"`
	SubmitLabel   string    `json:"submitLabel"`
}

// InFlight reports whether a submission is between dispatch and its final outcome.
func (s TransferState) InFlight() bool {
	return s.Estimating || s.Pending || s.Confirming
}

// ERC20ABI is the subset of the ERC-20 interface used for balance lookups and transfers.
const ERC20ABI = `[
{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"payable":false,"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"},
{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"payable":false,"stateMutability":"nonpayable","type":"function"}
]`
