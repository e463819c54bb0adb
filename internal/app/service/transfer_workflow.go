package service

import (
	"context"
	"errors"
	"sync"

	"token_transfer/internal/app/port"
	"token_transfer/internal/domain/entity"
	"token_transfer/internal/pkg/metrics"
)

// errReverted is reported when a mined transaction did not succeed.
var errReverted = errors.New("transaction reverted")

// TransferWorkflow holds the transfer form and drives one submission at a time.
// State changes are published to subscribers as full snapshots.
type TransferWorkflow struct {
	session  port.SessionProvider
	wallet   port.WalletClient
	networks port.NetworkDefinitionProvider
	logger   port.Logger

	mu          sync.Mutex
	state       entity.TransferState
	generation  uint64
	cancelWatch context.CancelFunc
	watchers    sync.WaitGroup
	subscribers map[int]chan entity.TransferState
	nextSubID   int
	closed      bool
}

// NewTransferWorkflow creates a workflow for the injected session and wallet.
func NewTransferWorkflow(session port.SessionProvider, wallet port.WalletClient, networks port.NetworkDefinitionProvider, logger port.Logger) *TransferWorkflow {
	w := &TransferWorkflow{
		session:     session,
		wallet:      wallet,
		networks:    networks,
		logger:      logger,
		subscribers: make(map[int]chan entity.TransferState),
	}
	w.state = entity.TransferState{Mode: entity.ModeNative, Outcome: entity.OutcomeIdle}
	w.deriveLocked()
	return w
}

// State returns the current form and submission state.
func (w *TransferWorkflow) State() entity.TransferState {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deriveLocked()
	return w.state
}

// CanSubmit reports whether the submit action is enabled.
func (w *TransferWorkflow) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canSubmitLocked()
}

// SetRecipient updates the recipient field.
func (w *TransferWorkflow) SetRecipient(recipient string) {
	w.update(func(s *entity.TransferState) { s.Recipient = recipient })
}

// SetAmount updates the amount field.
func (w *TransferWorkflow) SetAmount(amount string) {
	w.update(func(s *entity.TransferState) { s.Amount = amount })
}

// SetSearchQuery updates the token search filter.
func (w *TransferWorkflow) SetSearchQuery(query string) {
	w.update(func(s *entity.TransferState) { s.SearchQuery = query })
}

// SetMode switches between native and ERC-20 transfers. Switching to native clears the selected token.
func (w *TransferWorkflow) SetMode(mode entity.TokenMode) {
	w.update(func(s *entity.TransferState) {
		if mode != entity.ModeERC20 {
			mode = entity.ModeNative
			s.SelectedToken = ""
		}
		s.Mode = mode
	})
}

// SelectToken switches to ERC-20 mode with the given token contract.
func (w *TransferWorkflow) SelectToken(address string) {
	w.update(func(s *entity.TransferState) {
		s.Mode = entity.ModeERC20
		s.SelectedToken = address
	})
}

// ClearToken drops the selected token without leaving ERC-20 mode.
func (w *TransferWorkflow) ClearToken() {
	w.update(func(s *entity.TransferState) { s.SelectedToken = "" })
}

// Apply sets every form field from a request in one update.
func (w *TransferWorkflow) Apply(req entity.TransferRequest) {
	w.update(func(s *entity.TransferState) {
		s.Recipient = req.Recipient
		s.Amount = req.Amount
		s.Mode = req.Mode
		s.SelectedToken = req.TokenAddress
		if s.Mode != entity.ModeERC20 {
			s.Mode = entity.ModeNative
			s.SelectedToken = ""
		}
	})
}

// Reset clears the outcome of the last submission and drops its pending receipt, keeping the form fields.
// It is ignored while a submission is being validated or dispatched.
func (w *TransferWorkflow) Reset() {
	w.mu.Lock()
	if w.state.Estimating || w.state.Pending {
		w.mu.Unlock()
		return
	}
	w.generation++
	w.stopWatchLocked()
	w.state.Error = ""
	w.state.Estimating = false
	w.state.Pending = false
	w.state.Confirming = false
	w.state.Success = false
	w.state.Hash = ""
	w.state.ExplorerURL = ""
	w.state.Outcome = entity.OutcomeIdle
	w.publishLocked()
	w.mu.Unlock()
}

// Subscribe returns a channel receiving a snapshot after every state change, starting with the current state.
// Slow subscribers miss intermediate snapshots but always receive the latest. The returned function unsubscribes.
func (w *TransferWorkflow) Subscribe() (<-chan entity.TransferState, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan entity.TransferState, 16)
	if w.closed {
		close(ch)
		return ch, func() {}
	}
	id := w.nextSubID
	w.nextSubID++
	w.subscribers[id] = ch
	ch <- w.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if sub, ok := w.subscribers[id]; ok {
				delete(w.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close cancels any receipt watcher, waits for it to exit and closes all subscriptions.
func (w *TransferWorkflow) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.generation++
	w.stopWatchLocked()
	for id, ch := range w.subscribers {
		delete(w.subscribers, id)
		close(ch)
	}
	w.mu.Unlock()
	w.watchers.Wait()
}

// Submit validates the current form against the live balance of the selected token and dispatches
// the transfer. It returns once the wallet has accepted or refused the transaction; confirmation is
// tracked in the background and mirrored into State. While a submission is in flight, or in ERC-20
// mode without a selected token, Submit does nothing and returns entity.ErrSubmitDisabled.
// Without a connected session and wallet it records the failure and returns entity.ErrNotConnected.
func (w *TransferWorkflow) Submit(ctx context.Context) error {
	session := w.session.Session()

	w.mu.Lock()
	if w.closed || !w.formReadyLocked() {
		w.mu.Unlock()
		return entity.ErrSubmitDisabled
	}
	w.generation++
	gen := w.generation
	w.stopWatchLocked()
	req := entity.TransferRequest{
		Recipient:    w.state.Recipient,
		Amount:       w.state.Amount,
		Mode:         w.state.Mode,
		TokenAddress: w.state.SelectedToken,
	}
	w.state.Error = ""
	w.state.Success = false
	w.state.Hash = ""
	w.state.ExplorerURL = ""

	if !session.Connected || w.wallet == nil {
		w.state.Error = ClassifyFailure(entity.ErrNotConnected, ChannelSubmission)
		w.state.Outcome = entity.OutcomeFailed
		w.publishLocked()
		w.mu.Unlock()
		metrics.TransfersTotal.WithLabelValues(string(req.Mode), string(entity.OutcomeFailed)).Inc()
		return entity.ErrNotConnected
	}

	w.state.Estimating = true
	w.publishLocked()
	w.mu.Unlock()

	available := w.availableBalance(ctx, session.Account, req)
	validated, err := ValidateTransfer(req, available)
	if err != nil {
		w.mu.Lock()
		if gen == w.generation {
			w.state.Estimating = false
			w.state.Error = err.Error()
			w.state.Outcome = entity.OutcomeValidationRejected
			w.publishLocked()
		}
		w.mu.Unlock()
		metrics.TransfersTotal.WithLabelValues(string(req.Mode), string(entity.OutcomeValidationRejected)).Inc()
		return err
	}

	if !w.transition(gen, func(s *entity.TransferState) {
		s.Estimating = false
		s.Pending = true
	}) {
		return nil
	}

	hash, err := w.dispatch(ctx, validated)
	if err != nil {
		w.logger.Warn("Transfer dispatch failed", "mode", req.Mode, "error", err)
		w.fail(gen, req.Mode, ClassifyFailure(err, ChannelFor(req.Mode)))
		return err
	}

	netDef, _ := w.networks.GetNetworkDefinitionByChainID(session.ChainID)
	watchCtx, cancel := context.WithCancel(context.Background())

	w.mu.Lock()
	if gen != w.generation {
		w.mu.Unlock()
		cancel()
		return nil
	}
	w.state.Pending = false
	w.state.Confirming = true
	w.state.Hash = hash
	w.state.ExplorerURL = netDef.TxURL(hash)
	w.state.Outcome = entity.OutcomeSubmittedPending
	w.cancelWatch = cancel
	w.watchers.Add(1)
	w.publishLocked()
	w.mu.Unlock()

	w.logger.Info("Transfer submitted", "mode", req.Mode, "hash", hash)
	go w.watch(watchCtx, gen, req.Mode, hash)
	return nil
}

func (w *TransferWorkflow) availableBalance(ctx context.Context, account string, req entity.TransferRequest) *entity.BalanceInfo {
	var (
		balance *entity.BalanceInfo
		err     error
	)
	switch {
	case req.Mode == entity.ModeERC20 && req.TokenAddress != "":
		balance, err = w.wallet.TokenBalance(ctx, account, req.TokenAddress)
	case req.Mode == entity.ModeERC20:
		return nil
	default:
		balance, err = w.wallet.NativeBalance(ctx, account)
	}
	if err != nil {
		w.logger.Warn("Failed to resolve available balance", "mode", req.Mode, "token", req.TokenAddress, "error", err)
		return nil
	}
	return balance
}

func (w *TransferWorkflow) dispatch(ctx context.Context, v entity.ValidatedTransfer) (string, error) {
	if v.Request.Mode == entity.ModeERC20 {
		return w.wallet.WriteContract(ctx, entity.ContractCall{
			Contract: v.Token,
			ABI:      entity.ERC20ABI,
			Method:   "transfer",
			Args:     []any{v.Recipient, v.Value},
		})
	}
	return w.wallet.SendValue(ctx, v.Recipient.Hex(), v.Value)
}

func (w *TransferWorkflow) watch(ctx context.Context, gen uint64, mode entity.TokenMode, hash string) {
	defer w.watchers.Done()

	receipt, err := w.wallet.WaitForReceipt(ctx, hash)
	if ctx.Err() != nil {
		return
	}
	if err == nil && !receipt.Success {
		err = errReverted
	}
	if err != nil {
		w.logger.Warn("Transfer failed on chain", "hash", hash, "error", err)
		w.fail(gen, mode, ClassifyFailure(err, ChannelFor(mode)))
		return
	}

	if w.transition(gen, func(s *entity.TransferState) {
		s.Confirming = false
		s.Success = true
		s.Outcome = entity.OutcomeConfirmedSuccess
	}) {
		metrics.TransfersTotal.WithLabelValues(string(mode), string(entity.OutcomeConfirmedSuccess)).Inc()
		w.logger.Info("Transfer confirmed", "hash", hash, "block", receipt.BlockNumber)
	}
}

// fail records a classified failure for submission gen unless a newer one has started.
func (w *TransferWorkflow) fail(gen uint64, mode entity.TokenMode, message string) {
	if w.transition(gen, func(s *entity.TransferState) {
		s.Estimating = false
		s.Pending = false
		s.Confirming = false
		s.Error = message
		s.Outcome = entity.OutcomeFailed
	}) {
		metrics.TransfersTotal.WithLabelValues(string(mode), string(entity.OutcomeFailed)).Inc()
	}
}

// transition applies fn if gen is still the current submission and reports whether it did.
func (w *TransferWorkflow) transition(gen uint64, fn func(*entity.TransferState)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.generation {
		return false
	}
	fn(&w.state)
	w.publishLocked()
	return true
}

func (w *TransferWorkflow) update(fn func(*entity.TransferState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.state)
	w.publishLocked()
}

func (w *TransferWorkflow) canSubmitLocked() bool {
	return w.formReadyLocked() && w.wallet != nil && w.session.Session().Connected
}

// formReadyLocked reports whether the form alone allows a submission.
func (w *TransferWorkflow) formReadyLocked() bool {
	if w.state.InFlight() {
		return false
	}
	return w.state.Mode != entity.ModeERC20 || w.state.SelectedToken != ""
}

func (w *TransferWorkflow) stopWatchLocked() {
	if w.cancelWatch != nil {
		w.cancelWatch()
		w.cancelWatch = nil
	}
}

func (w *TransferWorkflow) deriveLocked() {
	w.state.CanSubmit = w.canSubmitLocked()
	w.state.SubmitLabel = SubmitLabel(w.state)
}

func (w *TransferWorkflow) publishLocked() {
	w.deriveLocked()
	for _, ch := range w.subscribers {
		select {
		case ch <- w.state:
		default:
			// full: drop the oldest snapshot so the latest one is always delivered
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- w.state:
			default:
			}
		}
	}
}
