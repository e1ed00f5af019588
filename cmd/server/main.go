package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/good-pics/backend/internal/config"
	delivery "github.com/good-pics/backend/internal/delivery/http"
	"github.com/good-pics/backend/internal/middleware"
	"github.com/good-pics/backend/internal/migrations"
	"github.com/good-pics/backend/internal/repository/postgres"
	"github.com/good-pics/backend/internal/usecase"
	"github.com/good-pics/backend/pkg/flux"
	"github.com/good-pics/backend/pkg/groq"
)

const (
	defaultAdminEmail    = "admin@flux.com"
	defaultAdminPassword = "Admin@123456"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Good Pics Backend Starting...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	cfg := config.Load()
	log.Printf("Server configured on port %s", cfg.Server.Port)

	if cfg.JWT.Secret == config.InsecureDefaultSecret {
		log.Println("WARNING: JWT_SECRET is not set, using the insecure built-in default. Do not run like this in production.")
	}

	// Connect to PostgreSQL with retry
	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		var err error
		pool, err = pgxpool.New(ctx, cfg.Database.URL)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				cancel()
				log.Println("Connected to PostgreSQL")
				break
			} else {
				pool.Close()
				log.Printf("Attempt %d: Failed to ping database: %v", attempt, pingErr)
			}
		} else {
			log.Printf("Attempt %d: Failed to connect to database: %v", attempt, err)
		}
		cancel()
		if attempt == 5 {
			log.Fatalf("Could not connect to database after 5 attempts")
		}
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	defer pool.Close()

	if err := runMigrations(cfg.Database.URL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations applied")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewRefreshTokenRepository(pool)
	eventRepo := postgres.NewLoginEventRepository(pool)
	imageRepo := postgres.NewImageRepository(pool)
	chatRepo := postgres.NewChatRepository(pool)
	settingsRepo := postgres.NewChatSettingsRepository(pool)

	// Initialize external API clients
	fluxClient := flux.NewClient(cfg.Flux.Endpoint, cfg.Flux.APIKey)
	groqClient := groq.NewClient(cfg.Groq.APIURL, cfg.Groq.APIKey)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(userRepo, tokenRepo, eventRepo, &cfg.JWT)
	userUsecase := usecase.NewUserUsecase(userRepo)
	imageUsecase := usecase.NewImageUsecase(imageRepo, fluxClient, cfg.Uploads.Dir, cfg.Uploads.BaseURL)
	chatUsecase := usecase.NewChatUsecase(chatRepo, settingsRepo, groqClient)

	if err := userUsecase.EnsureDefaultAdmin(defaultAdminEmail, defaultAdminPassword); err != nil {
		log.Printf("Failed to seed default admin: %v", err)
	}

	// Initialize HTTP handler and middleware
	cookies := delivery.NewCookieWriter(cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry, cfg.IsProduction())
	handler := delivery.NewHandler(authUsecase, userUsecase, imageUsecase, chatUsecase, cookies)
	authMiddleware := middleware.NewAuthMiddleware(authUsecase)

	// Create router
	router := delivery.NewRouter(handler, authMiddleware, cfg.CORS.AllowedOrigins, cfg.Uploads.Dir)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println()
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

// runMigrations applies the embedded goose migrations over a database/sql
// connection; the rest of the app talks to the pool directly.
func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}
