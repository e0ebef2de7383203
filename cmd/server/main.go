package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forumhub/forumhub/internal/api"
	"github.com/forumhub/forumhub/internal/chat"
	"github.com/forumhub/forumhub/internal/config"
	"github.com/forumhub/forumhub/internal/database"
	"github.com/forumhub/forumhub/internal/presence"
	"github.com/forumhub/forumhub/internal/stats"
	_ "github.com/lib/pq"
)

const defaultSigningKey = "wT0phFUusHZIrDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU="

var (
	addr           string
	dsn            string
	signingKey     string
	allowedOrigins string
	migrationsDir  string
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "database connection string")
	flag.StringVar(&signingKey, "signing-key", defaultSigningKey, "base64 encoded signing key")
	flag.StringVar(&allowedOrigins, "allowed-origins", "", "comma-separated list of allowed origins for CORS")
	flag.StringVar(&migrationsDir, "migrations", "migrations", "directory containing schema migrations")
	flag.Parse()

	logger := log.New(os.Stderr, "[forumhub] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins, migrationsDir)
	if err != nil {
		logger.Fatal("config:", err)
	}

	dbConn, err := database.NewPgForumRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	if err := dbConn.Migrate(cfg.MigrationsDir); err != nil {
		logger.Fatal("migrate:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	tracker := presence.NewTracker()

	chatServer := chat.NewChatServer(logger, dbConn, tracker, statsUpdater)

	srv := api.NewForumHubApp(mux, logger, chatServer, dbConn, tracker, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	chatServer.Shutdown()

	logger.Println("shutdown complete")
}
