package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clientprovider "token_transfer/internal/infrastructure/network/client"
	"token_transfer/internal/infrastructure/restapi"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket API",
	Long: `Serve the wallet session, balances, token catalog and transfer form over HTTP.

Transactions submitted through the API are signed without an interactive
confirmation. Transfer state changes are streamed on /api/v1/transfer/ws.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newApplication(appOptions{approve: clientprovider.AutoApprove})
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go app.catalog.Refetch(ctx)
	if s := app.session.Session(); s.Connected {
		go app.balances.Refresh(ctx, s.Account, s.ChainID)
	}

	if app.cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := restapi.NewTransferHandler(app.session, app.balances, app.catalog, app.workflow, app.log)
	router := restapi.SetupRouter(handler, app.cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		app.log.Info("Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	select {
	case err := <-serveErr:
		if err != nil {
			app.log.Error("HTTP server failed", "error", err)
			return err
		}
	case <-signalChan:
		app.log.Info("Shutdown signal received, stopping HTTP server")
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Close the workflow first so open WebSocket streams receive a close frame.
	app.workflow.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.log.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	app.log.Info("HTTP server stopped")
	return nil
}
