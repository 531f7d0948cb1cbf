package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/outofbits/ccatalog/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the catalog HTTP API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := r.config.Server.Host
	port := r.config.Server.Port
	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	if cmd.Int("port") != 0 {
		port = int(cmd.Int("port"))
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := r.newSyncEngine(db)
	if err != nil {
		return err
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Handler(server.NewSyncHandler(engine, r.logger))
	router.Handler(server.NewRunsHandler(newStore(db).runs, r.logger))
	router.Handler(server.NewSearchHandler(r.newSearchEngine(db), r.logger))

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	r.logger.Info("serving catalog API", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
