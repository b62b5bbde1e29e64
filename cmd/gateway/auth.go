package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/larriantoniy/wa_gateway/internal/adapters/qr"
	"github.com/larriantoniy/wa_gateway/internal/adapters/tg"
	"github.com/larriantoniy/wa_gateway/internal/config"
	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/larriantoniy/wa_gateway/internal/useCases"
)

var authOut string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log the session in by scanning a QR code",
	Long: `Starts only the chat session. Every time a QR challenge arrives the
code is written as PNG to --out; scan it from the phone app.
The command exits once the session is ready.`,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().StringVarP(&authOut, "out", "o", "qr.png", "where to write the QR PNG")
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateTDLib(); err != nil {
		return err
	}
	logger := setupLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := useCases.NewSessionController(logger, tg.NewFactory(tdConfig(cfg)), qr.NewRenderer(qr.DefaultSize))
	defer ctrl.Close()

	out := cmd.OutOrStdout()
	ctrl.OnTransition(func(st domain.Status) {
		switch {
		case st.HasQR:
			uri, ok, err := ctrl.PendingAuthArtifact(ctx)
			if err != nil || !ok {
				logger.Error("QR not available", "error", err)
				return
			}
			if err := writeDataURI(authOut, uri); err != nil {
				logger.Error("write QR", "path", authOut, "error", err)
				return
			}
			fmt.Fprintf(out, "QR code written to %s, scan it to log in\n", authOut)
		case st.Ready:
			fmt.Fprintln(out, "session is ready")
			cancel()
		}
	})

	ctrl.Start(ctx)
	<-ctx.Done()
	if !ctrl.IsReady() {
		return fmt.Errorf("interrupted in state %s", ctrl.Status().State)
	}
	return nil
}

func writeDataURI(path, uri string) error {
	_, b64, ok := strings.Cut(uri, ";base64,")
	if !ok {
		return fmt.Errorf("unexpected data URI")
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
