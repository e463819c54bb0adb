package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"token_transfer/internal/app/port"
	"token_transfer/internal/app/provider"
	"token_transfer/internal/app/service"
	"token_transfer/internal/client"
	"token_transfer/internal/infrastructure/configloader"
	clientprovider "token_transfer/internal/infrastructure/network/client"
	networkdefinition "token_transfer/internal/infrastructure/network/definition"
	"token_transfer/internal/infrastructure/tokenloader"
	"token_transfer/internal/infrastructure/walletloader"
	"token_transfer/internal/pkg/logger"
	"token_transfer/internal/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// appOptions controls how much of the application is wired for a command.
type appOptions struct {
	// approve is consulted before every transaction is signed.
	approve clientprovider.Approver
	// account, when set, is used read-only instead of loading the signing key.
	account string
}

// application holds the wired components shared by every command.
type application struct {
	cfg      *configloader.Config
	zap      *zap.Logger
	log      port.Logger
	networks *networkdefinition.NetworkDefinitionProvider
	clients  *clientprovider.EVMClientProvider
	session  port.SessionProvider
	balances *service.BalanceServiceImpl
	catalog  port.TokenCatalog
	workflow *service.TransferWorkflow
}

func newApplication(opts appOptions) (*application, error) {
	cfg, err := configloader.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	zapLogger, err := logger.Init(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger := logger.NewSlogAdapter()
	metrics.MustRegisterMetrics()

	networks := networkdefinition.NewNetworkDefinitionProvider(appLogger, cfg.RPCOverrides)
	if networkName != "" {
		def, ok := networks.GetNetworkDefinitionByName(networkName)
		if !ok {
			return nil, fmt.Errorf("unknown network %q", networkName)
		}
		cfg.Wallet.ChainID = def.ChainID
	}
	netDef, ok := networks.GetNetworkDefinitionByChainID(cfg.Wallet.ChainID)
	if !ok {
		return nil, fmt.Errorf("chain %d is not supported", cfg.Wallet.ChainID)
	}
	appLogger.Info("Using network", "name", netDef.Name, "chainID", netDef.ChainID)

	clients := clientprovider.NewEVMClientProvider(cfg.RPCCallTimeout(), appLogger)

	oneInch := client.NewOneInchClient(
		cfg.OneInch.TokenListBaseURL,
		cfg.OneInch.BalanceBaseURL,
		cfg.OneInch.APIKey,
		time.Duration(cfg.OneInch.RequestTimeoutMillis)*time.Millisecond,
		zapLogger.Named("OneInchClient"),
	)
	coinGecko := client.NewCoinGeckoClient(
		cfg.CoinGecko.BaseURL,
		cfg.CoinGecko.APIKey,
		time.Duration(cfg.CoinGecko.ClientTimeoutSeconds)*time.Second,
		zapLogger.Named("CoinGeckoClient"),
	)

	tokens := provider.NewTokenProvider(oneInch, tokenloader.NewTokenLoader(cfg.Tokens.Directory, appLogger), appLogger)

	account := opts.account
	var wallet port.WalletClient
	if account == "" {
		keys := walletloader.NewKeyLoader(cfg.Wallet.PrivateKey, cfg.Wallet.KeystorePath, cfg.Wallet.KeystorePassphrase, promptPassphrase, appLogger)
		key, _, err := keys.Load()
		switch {
		case errors.Is(err, walletloader.ErrNoKey):
			appLogger.Warn("No signing key, wallet session is disconnected")
		case err != nil:
			clients.Close()
			return nil, err
		default:
			evm, err := clients.GetEVMClient(netDef)
			if err != nil {
				clients.Close()
				return nil, err
			}
			signer := clientprovider.NewSignerWallet(evm.Eth(), netDef, key, opts.approve, cfg.ReceiptPollInterval(), appLogger)
			wallet = signer
			account = signer.Address().Hex()
		}
	}

	session := provider.NewSessionProvider(account, netDef.ChainID, networks)
	balances := service.NewBalanceService(
		networks,
		tokens,
		clients,
		oneInch,
		netDef.ChainID,
		cfg.OneInch.RequestsPerSecond,
		cfg.Performance.MaxConcurrentRoutines,
		appLogger,
	)
	catalog := service.NewTokenCatalogService(networks, coinGecko, cfg.CoinGecko.PerPage, appLogger)
	workflow := service.NewTransferWorkflow(session, wallet, networks, appLogger)

	return &application{
		cfg:      cfg,
		zap:      zapLogger,
		log:      appLogger,
		networks: networks,
		clients:  clients,
		session:  session,
		balances: balances,
		catalog:  catalog,
		workflow: workflow,
	}, nil
}

// Close stops the workflow and releases RPC connections.
func (a *application) Close() {
	a.workflow.Close()
	a.clients.Close()
	_ = a.zap.Sync()
}

func promptPassphrase(keystorePath string) (string, error) {
	fmt.Fprintf(os.Stderr, "Enter passphrase for %s: ", keystorePath)
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(passphrase), nil
}
