package main

import (
	"log"
	"net/http"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tourism-app/internal/apitest"
)

// fakeAPIConfig solo aplica a este binario de desarrollo.
type fakeAPIConfig struct {
	Port           string `env:"FAKE_API_PORT" envDefault:"3000"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	var cfg fakeAPIConfig
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	if cfg.LogDevelopment {
		logger, _ = zap.NewDevelopment()
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	defer logger.Sync()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apitest.Handler(logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting fake tourism api", zap.String("port", cfg.Port), zap.String("base", "/api"))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
