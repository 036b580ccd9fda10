package main

import (
	"net/http"

	accountapp "github.com/foodforall/marketplace/application/account"
	listingapp "github.com/foodforall/marketplace/application/listing"
	reservationapp "github.com/foodforall/marketplace/application/reservation"
	"github.com/foodforall/marketplace/cmd/config"
	redisclient "github.com/foodforall/marketplace/cmd/redis"
	_ "github.com/foodforall/marketplace/docs"
	accountRepo "github.com/foodforall/marketplace/repository/account"
	listingRepo "github.com/foodforall/marketplace/repository/listing"
	redisRepo "github.com/foodforall/marketplace/repository/redis"
	txRepo "github.com/foodforall/marketplace/repository/tx"
	"github.com/foodforall/marketplace/thirdparty/rabbitmq"
	"github.com/foodforall/marketplace/transport"
	"github.com/foodforall/marketplace/utils/logger"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// @title FoodForAll Marketplace API
// @version 1.0
// @description Surplus-food marketplace API: restaurants publish discounted listings, users reserve them.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables
	cfg := config.Load()

	// Initialize global logger
	if err := logger.Init(cfg.Environment); err != nil {
		// fallback to standard log if zap init fails
		panic(err)
	}
	defer logger.Close()

	logger.Info("Starting server", zap.String("env", cfg.Environment))

	// Connect to database
	db, err := sqlx.Connect("mysql", cfg.GetDSN())
	if err != nil {
		logger.Fatal("err connect db", zap.Error(err))
	}

	// Initialize Redis client
	if err := redisclient.New(cfg); err != nil {
		logger.Fatal("err connect redis", zap.Error(err))
	}
	defer func() {
		_ = redisclient.Close()
	}()

	// Set database connection pool settings
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Listing expiration publisher; the catalog works without it when
	// no expiration window is configured.
	var publisher *rabbitmq.Publisher
	if cfg.Listing.ExpirationWindow > 0 {
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.User, cfg.RabbitMQ.Password)
		if err != nil {
			logger.Fatal("err connect rabbitmq", zap.Error(err))
		}
		defer publisher.Close()
	}

	// Initialize repositories
	AccountRepo := accountRepo.NewAccountRepository(db)
	ListingRepo := listingRepo.NewListingRepository(db)
	RedisRepo := redisRepo.NewRepository()
	TxRepo := txRepo.NewTxRepository(db)

	// Initialize application layers
	AccountApp := accountapp.NewAccountApp(cfg, AccountRepo, RedisRepo)
	ListingApp := listingapp.NewListingApp(cfg, ListingRepo, publisher)
	ReservationApp := reservationapp.NewReservationApp(cfg, TxRepo, ListingRepo)

	httpTransport := transport.NewTransport(AccountApp, ListingApp, ReservationApp, cfg.Internal.APIKey)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpTransport,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info("HTTP server running", zap.String("port", cfg.Server.Port))
	err = server.ListenAndServe()
	if err != nil {
		logger.Fatal("failed server", zap.Error(err))
	}
}
