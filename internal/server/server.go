// Package server runs the service process: it boots the backends from
// config, serves HTTP (and gRPC when GRPC_PORT is set) and shuts down
// gracefully when its context ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/shashiranjanraj/kproduct/config"
	"github.com/shashiranjanraj/kproduct/internal/kernel"
	"github.com/shashiranjanraj/kproduct/pkg/cache"
	"github.com/shashiranjanraj/kproduct/pkg/database"
	"github.com/shashiranjanraj/kproduct/pkg/grpc"
	"github.com/shashiranjanraj/kproduct/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// Run boots from config and serves until ctx is cancelled.
func Run(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return err
	}
	flush, err := logger.Setup()
	if err != nil {
		logger.Warn("logger: mongo sink disabled", "error", err)
	}
	defer flush()

	db, err := database.Connect()
	if err != nil {
		return err
	}

	store, err := cache.Connect(ctx)
	if err != nil {
		logger.Warn("cache: running without redis", "error", err)
	}
	defer store.Close()

	k, err := kernel.New(db, store, kernel.OptionsFromConfig())
	if err != nil {
		return err
	}
	defer k.Close()

	if port := config.GRPCPort(); port != "" {
		srv, _, err := grpc.Start(port, func(ctx context.Context) error { return database.Ping(ctx, db) })
		if err != nil {
			return err
		}
		defer grpc.Stop(srv)
	}

	addr := ":" + config.AppPort()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}
	logger.Info("server: listening", "app", config.AppName(), "addr", lis.Addr().String())
	return Serve(ctx, lis, k)
}

// Serve runs k on lis and the alert hub beside it. When ctx ends the HTTP
// server drains in-flight requests for up to shutdownTimeout.
func Serve(ctx context.Context, lis net.Listener, k *kernel.Kernel) error {
	srv := &http.Server{
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		k.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if err := srv.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
