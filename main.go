package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/saxenaaman628/org-voting-system/config"
	"github.com/saxenaaman628/org-voting-system/internal/api"
	"github.com/saxenaaman628/org-voting-system/internal/database"
	"github.com/saxenaaman628/org-voting-system/internal/redis"
	redishandler "github.com/saxenaaman628/org-voting-system/internal/redisHandler"
	"github.com/saxenaaman628/org-voting-system/internal/repositories"
	"github.com/saxenaaman628/org-voting-system/internal/services"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	db := database.MustOpen(cfg.DBDriver, cfg.DBDSN)
	defer database.Close(db)
	rdb := redis.MustRedis(cfg)
	defer rdb.Close()

	repos := repositories.New(db)
	room := redishandler.NewRoom(rdb)
	opts := services.Options{
		Notifier:    room,
		Audit:       redishandler.NewAuditLog(rdb),
		HookTimeout: cfg.NotifyTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	scheduler := services.NewScheduler(repos, cfg.SweepInterval, opts)
	go scheduler.Run(ctx)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	api.RegisterRoutes(r, api.Deps{
		JWTSecret:   []byte(cfg.JWTSecret),
		CORSOrigins: cfg.CORSOrigins,
		Voting:      services.NewVotingService(repos, opts),
		Elections:   services.NewElectionService(repos, opts),
		Registry:    services.NewRegistryService(repos, opts),
		Tally:       services.NewTallyService(repos),
		Live:        room,
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("election server listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
