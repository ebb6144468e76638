package main

import (
	"context"
	"log"
	"os"
	"time"

	"promptdesk/internal/api"
	"promptdesk/internal/auth"
	"promptdesk/internal/config"
	"promptdesk/internal/history"
	"promptdesk/internal/redis"
	"promptdesk/internal/service/account"
	"promptdesk/internal/service/answer"
	"promptdesk/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("PROMPTDESK_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbType := os.Getenv("PROMPTDESK_DB")
	if dbType == "" {
		dbType = "sqlite3"
	}
	// Store failures degrade: the handle stays nil and every dependent
	// call checks the sentinel before use.
	db, err := storage.Open(dbType, cfg)
	if err != nil {
		log.Printf("credential store unavailable: %v", err)
		db = nil
	} else {
		defer db.Close()
		if err := storage.Migrate(db, dbType); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
	}

	rdb, err := redis.NewRedisClient(cfg)
	if err != nil {
		log.Printf("history store unavailable, history disabled: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}
	historyStore := history.NewStore(rdb, cfg.BasicConfig.HistoryNamespace)

	generator, err := answer.NewGenerator(context.Background(), cfg)
	if err != nil {
		log.Printf("answer generator disabled: %v", err)
		generator = nil
	}

	accounts := account.NewService(db)
	authService := auth.NewService(db, rdb, time.Duration(cfg.BasicConfig.TokenTTLHours)*time.Hour)
	handlers := api.NewHandler(accounts, authService, historyStore, generator)

	router := gin.Default()
	router.LoadHTMLGlob(cfg.BasicConfig.TemplateGlob)
	router.Static("/static", "./web/static")
	handlers.RegisterRoutes(router)

	if err := router.Run(cfg.BasicConfig.ServerAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
