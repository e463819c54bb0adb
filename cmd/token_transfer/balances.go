package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"token_transfer/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var balancesCmd = &cobra.Command{
	Use:   "balances [address]",
	Short: "Show native and token balances",
	Long: `Resolve the native balance and every non-zero token balance of the connected
account. Pass an address to inspect another account without loading the signing key.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBalances,
}

func runBalances(cmd *cobra.Command, args []string) error {
	var opts appOptions
	if len(args) == 1 {
		if !common.IsHexAddress(args[0]) {
			return fmt.Errorf("invalid address: %s", args[0])
		}
		opts.account = common.HexToAddress(args[0]).Hex()
	}

	app, err := newApplication(opts)
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

	snapshot := app.balances.Refresh(ctx, session.Account, session.ChainID)
	netDef, _ := app.networks.GetNetworkDefinitionByChainID(session.ChainID)
	printBalances(session, netDef.Name, snapshot)
	return nil
}

func printBalances(session entity.Session, network string, snapshot entity.BalanceSnapshot) {
	fmt.Printf("Account: %s\n", color.CyanString(session.Account))
	fmt.Printf("Network: %s (%d)\n\n", network, session.ChainID)

	if snapshot.Native != nil {
		fmt.Printf("  %-10s %s\n", color.YellowString(session.NativeSymbol), color.GreenString(snapshot.Native.Formatted))
	} else {
		fmt.Printf("  %-10s %s\n", color.YellowString(session.NativeSymbol), color.RedString("unavailable"))
	}

	if len(snapshot.Tokens) == 0 {
		fmt.Println(color.New(color.Faint).Sprint("  no token balances"))
		return
	}
	for _, b := range snapshot.Tokens {
		fmt.Printf("  %-10s %s  %s\n", color.YellowString(b.Symbol), color.GreenString(b.FormattedBalance), color.New(color.Faint).Sprint(b.Address))
	}
}
