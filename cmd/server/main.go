package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/slidemaker/internal/auth"
	"github.com/mmynk/slidemaker/internal/config"
	"github.com/mmynk/slidemaker/internal/ids"
	"github.com/mmynk/slidemaker/internal/metrics"
	"github.com/mmynk/slidemaker/internal/service"
	"github.com/mmynk/slidemaker/internal/storage"
	"github.com/mmynk/slidemaker/internal/storage/memory"
	miniokv "github.com/mmynk/slidemaker/internal/storage/minio"
	"github.com/mmynk/slidemaker/internal/storage/postgres"
	"github.com/mmynk/slidemaker/internal/storage/sqlite"
	"github.com/mmynk/slidemaker/internal/storage/tables"
	"github.com/mmynk/slidemaker/pkg/api/apiconnect"
	"github.com/mmynk/slidemaker/pkg/logging"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()

	kv, err := openKV(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer kv.Close()
	slog.Info("Storage initialized", "backend", cfg.Storage.Backend)

	m := metrics.New()
	gen := ids.New()
	tableOpts := []tables.Option{
		tables.WithRetries(cfg.Storage.CASRetries),
		tables.WithObserver(m),
		tables.WithLogger(slog.Default()),
	}
	store := tables.New(kv, gen, tableOpts...)
	accounts := auth.NewPasswordAuthenticator(store, gen)

	migrated, err := accounts.MigrateLegacyUsers(ctx, kv)
	if err != nil {
		slog.Error("Failed to migrate legacy users", "error", err)
		os.Exit(1)
	}
	if migrated > 0 {
		slog.Info("Migrated legacy users", "count", migrated)
	}

	services := service.NewServices(service.Deps{
		Store:        store,
		KV:           kv,
		SessionKV:    memory.New(),
		IDs:          gen,
		Accounts:     accounts,
		JWT:          auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL),
		Logger:       slog.Default(),
		TableOptions: tableOpts,
	})

	mux := http.NewServeMux()
	services.Mount(mux, m)
	mux.Handle("/metrics", m.Handler())

	staticDir, err := filepath.Abs(cfg.HTTP.StaticPath)
	if err != nil {
		slog.Error("Failed to resolve static path", "error", err)
		os.Exit(1)
	}
	slog.Info("Serving static files", "path", staticDir)
	mux.HandleFunc("/", staticHandler(staticDir))

	// Add logging and CORS middleware
	loggedHandler := loggingMiddleware(corsMiddleware(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	h2cHandler := h2c.NewHandler(loggedHandler, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// openKV opens the configured key-value backend.
func openKV(ctx context.Context, cfg *config.Config) (storage.KeyValue, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendPostgres:
		store, err := postgres.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendMinio:
		client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
			Secure: cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		store, err := miniokv.NewClient(ctx, client, cfg.Minio.Bucket)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// staticHandler serves the frontend, falling back to index.html for unknown paths.
func staticHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if apiconnect.IsProcedure(r.URL.Path) {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
