package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "cardabot-backend/docs"
	"cardabot-backend/internal/cardano"
	"cardabot-backend/internal/common/config"
	"cardabot-backend/internal/common/logger"
	"cardabot-backend/internal/common/middleware"
	chatHTTP "cardabot-backend/internal/features/chat/delivery/http"
	chatRedis "cardabot-backend/internal/features/chat/repository/redis"
	chatService "cardabot-backend/internal/features/chat/service"
	claimHTTP "cardabot-backend/internal/features/claim/delivery/http"
	claimService "cardabot-backend/internal/features/claim/service"
	linkHTTP "cardabot-backend/internal/features/link/delivery/http"
	linkService "cardabot-backend/internal/features/link/service"
	paymentHTTP "cardabot-backend/internal/features/payment/delivery/http"
	paymentRedis "cardabot-backend/internal/features/payment/repository/redis"
	paymentService "cardabot-backend/internal/features/payment/service"
	"cardabot-backend/internal/platform/blockfrost"
	"cardabot-backend/internal/platform/redis"
)

// @title           Cardabot Backend API
// @version         1.0
// @description     API server for chat-initiated ADA payments. Chat bots register chats, link wallets by stake address, and build, submit and claim payment transactions on behalf of their users.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey ServiceToken
// @in header
// @name Authorization
// @description Service token, sent as "Token <value>"

// @tag.name chats
// @tag.description Chat registration and settings

// @tag.name linking
// @tag.description Wallet linking via one-time tokens

// @tag.name payments
// @tag.description Unsigned transaction construction and submission

// @tag.name claims
// @tag.description Claiming of escrowed funds

func main() {
	cfg := config.Load()

	logger.Init("cardabot-backend", cfg.Debug)

	logger.Info().
		Str("network", cfg.Cardano.Network).
		Bool("debug", cfg.Debug).
		Msg("Starting Cardabot Backend")

	ctx := context.Background()

	redisClient, err := redis.Open(ctx, redis.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	ledger := blockfrost.NewClient(cfg.Cardano.BlockfrostURL, cfg.Cardano.BlockfrostProject, cfg.Cardano.Network)

	custodialKey, err := cardano.SigningKeyFromSeedHex(cfg.Cardano.CustodialKeySeed)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid custodial key seed")
	}
	custodialStake, err := cardano.ParseStakeAddress(cfg.Cardano.CustodialStakeAddr)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid custodial stake address")
	}

	feeUpperBoundAda, err := decimal.NewFromString(cfg.Cardano.FeeUpperBoundAda)
	if err != nil {
		logger.Fatal().Err(err).Str("value", cfg.Cardano.FeeUpperBoundAda).Msg("Invalid fee upper bound")
	}
	feeUpperBound := cardano.ToLovelace(feeUpperBoundAda)
	feeParams := cardano.FeeParams{PerByte: cfg.Cardano.MinFeeA, Constant: cfg.Cardano.MinFeeB}

	chatRepository := chatRedis.NewChatRepository(redisClient.Client)
	recordRepository := paymentRedis.NewUnsignedTxRepository(redisClient.Client)

	selector := paymentService.NewCoinSelector(ledger, feeUpperBound)
	builder := paymentService.NewTransactionBuilder(ledger, feeParams, feeUpperBound)

	chatSvc := chatService.NewChatService(chatRepository)
	linkSvc := linkService.NewLinkService(chatRepository, cfg.Link.TokenTTL)
	paymentSvc := paymentService.NewPaymentService(
		chatRepository, recordRepository, ledger, selector, builder, custodialStake, log.Logger)
	claimSvc := claimService.NewClaimService(
		ledger, custodialStake, custodialKey, feeParams, feeUpperBound, log.Logger)

	sweeper := linkService.NewSweeper(chatRepository, cfg.Link.SweepInterval, log.Logger)
	sweeper.Start()
	defer sweeper.Stop()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(log.Logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.ServiceAuth(cfg.Server.AuthToken))

	chatHTTP.NewHandler(chatSvc, log.Logger).RegisterRoutes(v1)
	linkHTTP.NewHandler(linkSvc, log.Logger).RegisterRoutes(v1)
	paymentHTTP.NewHandler(paymentSvc, log.Logger).RegisterRoutes(v1)
	claimHTTP.NewClaimHandler(claimSvc, log.Logger).RegisterRoutes(v1)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
