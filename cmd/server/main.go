package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/goalfolio-backend/internal/adapter/grpc"
	"github.com/simaogato/goalfolio-backend/internal/adapter/rest"
	"github.com/simaogato/goalfolio-backend/internal/app"
	"github.com/simaogato/goalfolio-backend/internal/config"
	"github.com/simaogato/goalfolio-backend/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("GOALFOLIO_CONFIG"), "path to goalfolio.yaml")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	// API_TOKEN is still honoured for existing deployments
	if token := os.Getenv("API_TOKEN"); token != "" && os.Getenv(config.EnvPrefix+"_SERVER_API_TOKEN") == "" {
		cfg.Server.APIToken = token
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 2. Open storage and build the services
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialise application")
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()
	logger.Info().
		Str("total", a.Ledger.TotalMarketValue().String()).
		Int("positions", len(a.Ledger.Positions())).
		Int("history", a.History.Len()).
		Msg("Ledger loaded")

	// 3. gRPC server with logging and auth interceptors
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(logger),
			grpcadapter.AuthInterceptor(cfg.Server.APIToken),
		),
	)
	grpcadapter.RegisterPortfolioServiceServer(grpcServer,
		grpcadapter.NewServer(a.Ledger, a.History, a.Watchlist, a.Dashboard))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.Server.GRPCAddr).Msg("Failed to listen")
	}

	// 4. HTTP server
	gin.SetMode(cfg.Server.Mode)
	handler := rest.NewHandler(a.Ledger, a.History, a.Watchlist, a.Dashboard)
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           rest.NewRouter(handler, cfg.Server.APIToken, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Server.GRPCAddr).Msg("gRPC server listening")
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Server.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown on signal or when either server fails
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Server stopped with error")
		return
	}
	logger.Info().Msg("Servers stopped")
}
