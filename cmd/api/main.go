package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openmart/mini-commerce/app/accounts"
	"github.com/openmart/mini-commerce/app/categories"
	"github.com/openmart/mini-commerce/app/middleware"
	"github.com/openmart/mini-commerce/app/products"
	"github.com/openmart/mini-commerce/config"
	"github.com/openmart/mini-commerce/models"
	"github.com/openmart/mini-commerce/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.Log.Level).Msg("invalid log level")
	}
	log = log.Level(level)

	db, err := openDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(&models.Category{}, &models.Product{}, &models.Role{}, &models.User{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	productsRepo := models.NewProductsRepository(db)
	categoriesRepo := models.NewCategoriesRepository(db)
	usersRepo := models.NewUsersRepository(db)

	if err := usersRepo.EnsureRoles(context.Background(), "admin", services.DefaultRole); err != nil {
		log.Fatal().Err(err).Msg("failed to seed roles")
	}

	jwtService := services.NewJWTService(cfg.JWT)
	productService := services.NewProductService(productsRepo, categoriesRepo, log)
	accountService := services.NewAccountService(usersRepo, jwtService, log)

	auth := middleware.NewAuth(jwtService, log)
	cors := middleware.NewCORS(cfg.Server.AllowedOrigins)

	handler := cors.Handler(newRouter(
		products.NewProductsHandler(productService),
		categories.NewCategoryHandler(categoriesRepo),
		accounts.NewAccountHandler(accountService),
		auth,
	))

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

// openDatabase opens the connection through lib/pq so driver errors keep
// their pq error codes, then hands the pool to gorm.
func openDatabase(dsn string) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

func newRouter(
	productsHandler *products.ProductsHandler,
	categoriesHandler *categories.CategoryHandler,
	accountsHandler *accounts.AccountHandler,
	auth *middleware.Auth,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/accounts/register", accountsHandler.HandleRegister)
	mux.HandleFunc("POST /api/accounts/login", accountsHandler.HandleLogin)

	mux.HandleFunc("GET /api/products", productsHandler.HandleGetAll)
	mux.HandleFunc("GET /api/products/search", productsHandler.HandleSearch)
	mux.HandleFunc("GET /api/products/price-range", productsHandler.HandlePriceRange)
	mux.HandleFunc("GET /api/products/category/{categoryId}", productsHandler.HandleGetByCategory)
	mux.HandleFunc("GET /api/products/{id}", productsHandler.HandleGetByID)
	mux.Handle("POST /api/products", auth.Require(http.HandlerFunc(productsHandler.HandleCreate)))
	mux.Handle("PUT /api/products/{id}", auth.Require(http.HandlerFunc(productsHandler.HandleUpdate)))
	mux.Handle("DELETE /api/products/{id}", auth.Require(http.HandlerFunc(productsHandler.HandleDelete)))

	mux.HandleFunc("GET /api/categories", categoriesHandler.HandleGetAll)
	mux.HandleFunc("GET /api/categories/{id}", categoriesHandler.HandleGet)
	mux.Handle("POST /api/categories", auth.Require(http.HandlerFunc(categoriesHandler.HandleCreate)))
	mux.Handle("PUT /api/categories/{id}", auth.Require(http.HandlerFunc(categoriesHandler.HandleUpdate)))
	mux.Handle("DELETE /api/categories/{id}", auth.Require(http.HandlerFunc(categoriesHandler.HandleDelete)))

	return mux
}
