package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrilink/agrilink-go/portal"
	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local marketplace portal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			displayAppname(a.config.GetAppName())

			// Validate any persisted session before the portal renders
			// protected content.
			a.sessions.Bootstrap(cmd.Context())

			shell, err := portal.New(a.config, a.sessions, a.catalog, a.signal, a.logger)
			if err != nil {
				return errors.Wrap(err, "[serve] building portal")
			}

			server := &http.Server{Addr: a.config.GetPort(), Handler: shell}
			go func() {
				a.logger.Info().Str("addr", server.Addr).Msg("portal listening")
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					a.logger.Error().Err(err).Msg("portal listen")
				}
			}()

			waitForStopSignal()
			return shutdown(server)
		},
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
