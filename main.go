package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/labguard/labguard-backend/client"
	"github.com/labguard/labguard-backend/config"
	"github.com/labguard/labguard-backend/handler"
	"github.com/labguard/labguard-backend/service"
	"github.com/labguard/labguard-backend/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		gin.SetMode(gin.ReleaseMode)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Store selection: Postgres when DATABASE_URL is set, in-memory otherwise.
	var st store.Store
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create database pool")
		}
		defer pool.Close()

		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database schema")
		}
		st = pg
		log.Info().Msg("using postgres store")
	} else {
		st = store.NewMemoryStore()
		log.Warn().Msg("DATABASE_URL not set, reports are kept in memory only")
	}

	pdfProcessor := service.NewPDFProcessor()
	reportService := service.NewReportService(pdfProcessor, st)
	trendService := service.NewTrendService()
	botClient := client.NewBotClient(cfg.BotURL)

	reportHandler := handler.NewReportHandler(reportService, cfg.MaxFileSize, cfg.MaxBatchFiles)
	trendHandler := handler.NewTrendHandler(reportService, trendService)
	chatHandler := handler.NewChatHandler(reportService, trendService, botClient)

	router := gin.Default()
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "LabGuard Backend",
		})
	})

	api := router.Group("/api/v1")
	{
		accounts := api.Group("/accounts/:accountId")
		{
			accounts.POST("/reports/analyze", reportHandler.AnalyzeBatch)
			accounts.GET("/reports", reportHandler.ListReports)
			accounts.GET("/reports/export.csv", trendHandler.ExportCSV)
			accounts.DELETE("/reports/:reportId", reportHandler.DeleteReport)
			accounts.PUT("/reports/:reportId/rows/:rowIndex", reportHandler.UpdateRow)
			accounts.DELETE("/reports/:reportId/rows/:rowIndex", reportHandler.DeleteRow)

			accounts.GET("/trends", trendHandler.Trends)
			accounts.GET("/trends/:analyte/insight", trendHandler.Insight)

			accounts.POST("/chat", chatHandler.Chat)
		}
	}

	log.Info().Str("port", cfg.Port).Msg("starting LabGuard backend")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
