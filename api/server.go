package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// RunServerWithContext starts the query-facade HTTP server and shuts it
// down gracefully when the context is canceled.
func RunServerWithContext(ctx context.Context, port int, handlers *Handlers) {
	mux := http.NewServeMux()
	handlers.Register(mux)

	listenAddr := ":" + strconv.Itoa(port)
	server := &http.Server{
		Addr:         listenAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infof("Starting control-plane API server on %s", listenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Context canceled. Shutting down API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Infof("Server forced to shutdown: %v", err)
		} else {
			log.Info("API server stopped gracefully.")
		}
	case err := <-serverErrors:
		log.Errorf("Server error: %v", err)
	}
}
