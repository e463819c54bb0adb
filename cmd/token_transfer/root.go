package main

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config/config.yml"

var (
	configPath  string
	networkName string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "token_transfer",
	Short: "Send native coins and ERC-20 tokens from a local signing key",
	Long: `token_transfer connects one account on a supported EVM chain, shows its
native and ERC-20 balances, browses the market token catalog and submits
native or ERC-20 transfers.

Supported chains: Ethereum (1), Goerli (5), Sepolia (11155111), Gnosis (100).

The signing key is read from TRANSFER_PRIVATE_KEY or from the keystore file
configured under wallet.keystorePath.

Examples:
  token_transfer serve                                   # HTTP + WebSocket API
  token_transfer balances                                # balances of the connected account
  token_transfer balances --network gnosis               # same account on Gnosis Chain
  token_transfer tokens --query usd                      # search the token catalog
  token_transfer send 0x1234... 0.1                      # send 0.1 of the native coin
  token_transfer send 0x1234... 25 --token 0xA0b8...     # send 25 of an ERC-20 token`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&networkName, "network", "n", "", "network identifier (ethereum, goerli, sepolia, gnosis), overrides wallet.chainId")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(balancesCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(sendCmd)
}
