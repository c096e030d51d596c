package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type BookingHttpServer struct {
	router    *Router
	muxRouter *mux.Router
	port      string
	logger    *zap.Logger
}

func NewBookingHttpServer(router *Router, muxRouter *mux.Router, port string, logger *zap.Logger) *BookingHttpServer {
	if port == "" {
		port = "8080"
	}
	return &BookingHttpServer{
		router:    router,
		muxRouter: muxRouter,
		port:      port,
		logger:    logger,
	}
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *BookingHttpServer) Start() {
	s.router.RegisterRoutes()

	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.muxRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt or termination signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("ListenAndServe()", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("Shutting down the server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	s.logger.Info("Server exiting")
}
