package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/baldiga/linkedin-ai-proxy-v2/internal/config"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/database"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/handler"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/llm"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/middleware"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/model"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/queue"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/quota"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/repository"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/router"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env directly
	cfg := config.Load()

	// Dependencies degrade instead of failing startup: a missing database
	// or API key leaves the affected endpoints answering 500 while the
	// health endpoint stays up.
	var (
		users  handler.UserStore
		ledger *quota.Ledger
	)
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Printf("mysql unavailable: %v; user endpoints will answer 500", err)
	} else {
		repo := repository.NewUserRepo(db)
		users = repo
		ledger = quota.New(repo, model.TierLimits())
	}

	var gen *llm.Client
	if cfg.OpenAIKey == "" {
		log.Printf("OPENAI_API_KEY not set; /generate-comment will answer 500")
	} else {
		gen = llm.New(cfg.OpenAIKey, llm.WithBaseURL(cfg.OpenAIBase), llm.WithModel(cfg.OpenAIModel))
	}

	if cfg.JWTSecret == "" {
		// Tokens stay valid only within this process; fine for the
		// optional /v1/me surface, login itself does not depend on them.
		secret, err := utils.RandomHex(32)
		if err != nil {
			log.Fatal(err)
		}
		cfg.JWTSecret = secret
		log.Printf("JWT_SECRET not set; using a random per-process secret")
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient()))

	auth := handler.NewAuthHandler(cfg, users, ledger)
	comments := handler.NewCommentHandler(cfg, users, ledger, gen)
	router.Register(e, auth, comments, cfg.JWTSecret)

	// Generation history consumer; a no-op when no broker is configured.
	go func() {
		if err := queue.StartCommentConsumer(); err != nil {
			log.Printf("comment consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
