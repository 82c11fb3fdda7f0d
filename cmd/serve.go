package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"timecard/config"
	"timecard/web"
	"timecard/workflow"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web dashboard",
	Long: `Start a local HTTP server with the contributor and manager dashboards.

The UI is intended for a single trusted machine: the acting identity is picked
by username and role with no credential check, so do not bind it beyond
localhost without putting real authentication in front.`,
	Example: `
  # Start on the configured address (default 127.0.0.1:8484)
  timecard serve

  # Start on a custom address
  timecard serve --listen 127.0.0.1:9090
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		listen := strings.TrimSpace(serveListen)
		if listen == "" {
			listen = cfg.Web.Listen
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		server := &http.Server{
			Addr:    listen,
			Handler: web.NewServer(store, workflow.New(store)),
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		fmt.Printf("Listening on http://%s\n", listen)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default: web.listen from config)")
}
