// Package main runs the rattler decision server, the HTTP boundary the
// game engine polls for a move every turn.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mfranzen/rattler/config"
	"github.com/mfranzen/rattler/schemas"
)

func main() {
	cfgPath := flag.String("config", "rattler.yaml", "path to the config file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal("load config", "err", err)
	}

	schema, err := schemas.Request()
	if err != nil {
		log.Fatal("compile schemas", "err", err)
	}

	sv := newServer(cfg, schema)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           sv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "err", err)
		}
	}()

	log.Info("listening", "addr", cfg.Addr, "strategy", cfg.Strategy,
		"budget", cfg.Budget.Std(), "trees", cfg.Trees)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("serve", "err", err)
	}
}
