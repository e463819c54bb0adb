package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"token_transfer/internal/app/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Search the token catalog",
	Long: `List the top tokens by market cap, filtered by symbol or name.

Tokens held by the account with a positive balance on the configured chain are
marked as selectable for an ERC-20 transfer.`,
	Args: cobra.NoArgs,
	RunE: runTokens,
}

func runTokens(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	account, _ := cmd.Flags().GetString("account")
	if account != "" {
		if !common.IsHexAddress(account) {
			return fmt.Errorf("invalid address: %s", account)
		}
		account = common.HexToAddress(account).Hex()
	}

	app, err := newApplication(appOptions{account: account})
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := app.session.Session()
	app.catalog.Refetch(ctx)
	if session.Connected {
		app.balances.Refresh(ctx, session.Account, session.ChainID)
	}

	catalog := app.catalog.List()
	if catalog.Error != "" {
		fmt.Println(color.RedString(catalog.Error))
		return nil
	}

	options := service.TokenOptions(service.FilterTokens(catalog.Tokens, query), app.balances.Snapshot().Tokens, session.ChainID, "")
	if len(options) == 0 {
		fmt.Println("No tokens found")
		return nil
	}

	faint := color.New(color.Faint)
	for _, opt := range options {
		line := fmt.Sprintf("%-8s %-28s", opt.Token.Symbol, opt.Token.Name)
		switch {
		case opt.Selectable:
			fmt.Printf("%s %s  %s\n", color.GreenString(line), color.GreenString(opt.Balance), opt.Address)
		case opt.Address == "":
			fmt.Println(faint.Sprintf("%s  not on this chain", line))
		default:
			fmt.Println(faint.Sprintf("%s  %s", line, opt.Address))
		}
	}
	return nil
}

func init() {
	tokensCmd.Flags().StringP("query", "q", "", "filter by symbol or name")
	tokensCmd.Flags().String("account", "", "show ownership for this address instead of the signing account")
}
