package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/barbergo/loyalty-wheel/internal/config"
	"github.com/barbergo/loyalty-wheel/internal/database"
	"github.com/barbergo/loyalty-wheel/internal/handler"
	"github.com/barbergo/loyalty-wheel/internal/middleware"
	"github.com/barbergo/loyalty-wheel/internal/queue"
	"github.com/barbergo/loyalty-wheel/internal/repository"
	"github.com/barbergo/loyalty-wheel/internal/router"
	"github.com/barbergo/loyalty-wheel/internal/wheel"
)

func main() {
	// Load .env when present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the draw rate limiter and the public response cache.
	// nil means Redis is unreachable; both features degrade to no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	shops := repository.NewBarbershopRepo(db)
	customers := repository.NewCustomerRepo(db)
	prizes := repository.NewPrizeRepo(db)
	plays := repository.NewPlayRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens, shops, customers)
	adminH := handler.NewAdminHandler(shops, prizes, plays)
	customerH := handler.NewCustomerHandler(shops, customers, prizes, plays, users, cfg.AMQPURL, wheel.NewSource())
	publicH := &handler.PublicHandler{ShopRepo: shops, PrizeRepo: prizes}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)
	router.RegisterCustomer(e, customerH, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterPublic(e, publicH,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	// Winner notifications drain on a background goroutine; the consumer
	// reconnects on its own if the broker drops.
	go func() {
		if err := queue.StartPrizeWonConsumer(cfg.AMQPURL); err != nil {
			log.Printf("prize-won consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
