package main

import (
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/backend/api"
	"github.com/fintrack/backend/config"
	"github.com/fintrack/backend/db"
	_ "github.com/fintrack/backend/docs"
	"github.com/fintrack/backend/logging"
)

// @title Fintrack API
// @version 1.0
// @description Personal finance tracking backend: income and expense
// @description transactions, categories and period summaries per user.
// @BasePath /api
// @SecurityDefinitions.apikey ApiKeyAuth
// @In header
// @Name Authorization
func main() {
	log := logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	storage, err := db.NewStorage(cfg.PostgresURL)
	if err != nil {
		log.WithError(err).Fatal("connect to database")
	}
	defer storage.Close()

	handler := api.NewHandler(storage, cfg.JWTSecret)
	r := api.NewRouter(handler, cfg.CORSOrigins)

	log.WithFields(logrus.Fields{"port": cfg.Port}).Info("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
