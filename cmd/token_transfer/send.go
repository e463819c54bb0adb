package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"token_transfer/internal/domain/entity"
	"token_transfer/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send [recipient] [amount]",
	Short: "Send native coin or an ERC-20 token",
	Long: `Send the native coin of the configured chain, or an ERC-20 token with --token.

The amount is a decimal in whole units (e.g. 0.5) and must not exceed the
account's balance of the selected token. The transaction is shown for
confirmation before it is signed, and the command waits until it is mined.

Examples:
  token_transfer send 0x742d35Cc6634C0532925a3b844Bc454e4438f44e 0.01
  token_transfer send 0x742d35Cc6634C0532925a3b844Bc454e4438f44e 25 --token 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48`,
	Args: cobra.ExactArgs(2),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	token, _ := cmd.Flags().GetString("token")
	skipConfirm, _ := cmd.Flags().GetBool("yes")

	// The approver reads the form from the workflow, which exists only once the application is built.
	var app *application
	approve := func(ctx context.Context, tx *types.Transaction) error {
		if skipConfirm {
			return nil
		}
		return confirmTransaction(app, tx)
	}

	app, err := newApplication(appOptions{approve: approve})
	if err != nil {
		return err
	}
	defer app.Close()

	session := app.session.Session()
	if !session.Connected {
		return entity.ErrNotConnected
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := entity.TransferRequest{Recipient: args[0], Amount: args[1], Mode: entity.ModeNative}
	if token != "" {
		req.Mode = entity.ModeERC20
		req.TokenAddress = token
	}
	app.workflow.Apply(req)

	states, unsubscribe := app.workflow.Subscribe()
	defer unsubscribe()

	if err := app.workflow.Submit(ctx); err != nil {
		if msg := app.workflow.State().Error; msg != "" {
			fmt.Println(color.RedString("❌ %s", msg))
		}
		return err
	}

	submitted := app.workflow.State()
	fmt.Printf("📤 Transaction sent: %s\n", color.CyanString(submitted.Hash))
	if submitted.ExplorerURL != "" {
		fmt.Printf("🔗 %s\n", submitted.ExplorerURL)
	}

	final, err := waitForOutcome(ctx, states)
	if err != nil {
		fmt.Println(color.YellowString("Stopped waiting, the transaction may still be mined."))
		return err
	}
	if final.Outcome != entity.OutcomeConfirmedSuccess {
		fmt.Println(color.RedString("❌ %s", final.Error))
		return errors.New(final.Error)
	}
	fmt.Println(color.GreenString("✅ Transfer confirmed"))
	return nil
}

// waitForOutcome spins until the workflow reports a final outcome.
func waitForOutcome(ctx context.Context, states <-chan entity.TransferState) (entity.TransferState, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Waiting for confirmation..."),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	defer func() { _ = bar.Finish() }()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return entity.TransferState{}, ctx.Err()
		case <-ticker.C:
			_ = bar.Add(1)
		case state, ok := <-states:
			if !ok {
				return entity.TransferState{}, errors.New("transfer workflow closed")
			}
			if state.Outcome == entity.OutcomeConfirmedSuccess || state.Outcome == entity.OutcomeFailed {
				return state, nil
			}
		}
	}
}

func confirmTransaction(app *application, tx *types.Transaction) error {
	state := app.workflow.State()
	session := app.session.Session()
	netDef, _ := app.networks.GetNetworkDefinitionByChainID(session.ChainID)

	symbol := session.NativeSymbol
	if state.Mode == entity.ModeERC20 {
		symbol = state.SelectedToken
	}
	fee := new(big.Int).Mul(tx.GasFeeCap(), new(big.Int).SetUint64(tx.Gas()))

	fmt.Println()
	fmt.Println("📋 Transaction Details:")
	fmt.Printf("   Network:   %s\n", netDef.Name)
	fmt.Printf("   From:      %s\n", session.Account)
	fmt.Printf("   To:        %s\n", state.Recipient)
	fmt.Printf("   Amount:    %s %s\n", color.GreenString(state.Amount), symbol)
	fmt.Printf("   Gas limit: %d\n", tx.Gas())
	fmt.Printf("   Max fee:   %s %s\n", utils.FormatBigInt(fee, netDef.Decimals), session.NativeSymbol)
	fmt.Println()
	fmt.Printf("Press y to confirm or n to stop (y/n): ")

	var response string
	_, _ = fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	if response == "y" || response == "yes" {
		return nil
	}
	return entity.ErrUserRejected
}

func init() {
	sendCmd.Flags().StringP("token", "t", "", "ERC-20 token contract address (native coin when omitted)")
	sendCmd.Flags().BoolP("yes", "y", false, "sign without asking for confirmation")
}
