package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	v1 "github.com/pouyadh/chat-app-server/cmd/api/router/v1"
	"github.com/pouyadh/chat-app-server/internal/config"
	cacheadapter "github.com/pouyadh/chat-app-server/internal/infrastructure/cache/adapter"
	"github.com/pouyadh/chat-app-server/internal/infrastructure/database"
	queueadapter "github.com/pouyadh/chat-app-server/internal/infrastructure/queue/adapter"
	"github.com/pouyadh/chat-app-server/internal/infrastructure/realtime"
	"github.com/pouyadh/chat-app-server/internal/pkg/auth"
	chatadapter "github.com/pouyadh/chat-app-server/internal/pkg/chat/persistence/repository/adapter"
	chatservice "github.com/pouyadh/chat-app-server/internal/pkg/chat/service"
	contentadapter "github.com/pouyadh/chat-app-server/internal/pkg/content/persistence/adapter"
	useradapter "github.com/pouyadh/chat-app-server/internal/pkg/user/persistence/repository/adapter"
	userservice "github.com/pouyadh/chat-app-server/internal/pkg/user/service"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn(".env file not loaded")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.NewPoolFromEnv(ctx)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	cache, err := cacheadapter.NewRedisAdapter()
	if err != nil {
		log.WithError(err).Fatal("connect redis")
	}
	defer cache.Close()

	queueClient, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		log.WithError(err).Fatal("connect queue")
	}
	defer queueClient.Close()

	queueServer, err := queueadapter.NewAsynqServer()
	if err != nil {
		log.WithError(err).Fatal("start queue server")
	}

	rt := realtime.NewRouter(log)
	defer rt.Close()

	userRepo := useradapter.NewPgUserRepository(pool)
	groupRepo := chatadapter.NewPgGroupChatRepository(pool)
	channelRepo := chatadapter.NewPgChannelRepository(pool)
	contentRepo := contentadapter.NewPgContentRepository(pool)

	issuer := auth.NewTokenIssuer(cfg)
	tokens := auth.NewTokenStore(cache)

	users := userservice.NewUserService(userRepo, contentRepo, rt, issuer, tokens, queueClient, log, cfg.Client.WebBaseURL)
	groupChats := chatservice.NewGroupChatService(groupRepo, userRepo, contentRepo, rt, log)
	channels := chatservice.NewChannelService(channelRepo, userRepo, contentRepo, rt, log)

	users.RegisterTasks(queueServer)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		if err := queueServer.Run(workerCtx); err != nil {
			log.WithError(err).Error("queue server stopped")
		}
	}()

	engine := gin.Default()
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(engine, v1.Deps{
		Users:      users,
		GroupChats: groupChats,
		Channels:   channels,
		Issuer:     issuer,
		Realtime:   rt,
		Log:        log,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop, stopCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopCancel()
	<-stop.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if err := queueServer.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("queue shutdown")
	}
}
