package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-api/internal/bootstrap"
	httptransport "todo-api/internal/transport/http"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx)
	if err != nil {
		slog.Error("bootstrap failed", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.Error("close resources failed", slog.String("error", err.Error()))
		}
	}()

	router := httptransport.NewRouter(app)
	server := &http.Server{
		Addr:              app.Config.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.Logger.Info("server starting", slog.String("addr", server.Addr), slog.String("env", app.Config.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	exitCode := 0
	select {
	case err := <-serverErr:
		if err != nil {
			app.Logger.Error("server failed", slog.String("error", err.Error()))
			return 1
		}
	case <-ctx.Done():
		app.Logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.ShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("server shutdown failed", slog.String("error", err.Error()))
		exitCode = 1
	}
	app.Logger.Info("server stopped")
	return exitCode
}
