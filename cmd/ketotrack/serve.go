package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	adapthttp "ketotrack/internal/adapter/http"
	"ketotrack/internal/identity"
	"ketotrack/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and web UI",
	RunE:  withRuntime(runServe),
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, rt *runtime, _ []string) error {
	ctx := cmd.Context()
	log := logging.WithComponent("main")

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = rt.cfg.Addr
	}

	var sso *identity.OIDC
	if rt.cfg.SSOEnabled() {
		o, err := identity.NewOIDC(ctx, rt.cfg.OIDC)
		if err != nil {
			return err
		}
		sso = o
	}

	secret := []byte(rt.cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		log.Warn().Msg("no session secret configured, sessions end on restart")
	}

	if _, err := rt.phases.CheckAdvancement(ctx, rt.repo.Profile(ctx)); err != nil {
		log.Warn().Err(err).Msg("phase check failed")
	}

	srv := adapthttp.New(adapthttp.Services{
		Repo:     rt.repo,
		Phases:   rt.phases,
		Charts:   rt.charts,
		Settings: rt.settings,
		Policy:   rt.policy,
		State:    rt.state,
		Migrator: rt.migrator,
		Auth:     rt.auth,
		Identity: rt.ident,
		OIDC:     sso,
	}, rt.cfg.WebDir, secret, rt.cfg.SessionTTL)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Bool("sso", sso != nil).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
