package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"helpmarket/internal/config"
	"helpmarket/internal/database"
	"helpmarket/internal/domain/auth"
	"helpmarket/internal/domain/category"
	"helpmarket/internal/domain/conversation"
	"helpmarket/internal/domain/message"
	"helpmarket/internal/domain/negotiation"
	"helpmarket/internal/domain/notification"
	"helpmarket/internal/domain/offer"
	"helpmarket/internal/middleware"
	jwtsvc "helpmarket/internal/pkg/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(
		&auth.User{},
		&category.Category{},
		&offer.Offer{},
		&conversation.Conversation{},
		&message.Message{},
		&notification.Notification{},
	); err != nil {
		log.Fatal(err)
	}

	userRepo := auth.NewRepository(db)
	categoryRepo := category.NewRepository(db)
	offerRepo := offer.NewRepository(db)
	convRepo := conversation.NewRepository(db)
	msgRepo := message.NewRepository(db)
	notifRepo := notification.NewRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	authService := auth.NewService(userRepo, j)
	offerService := offer.NewService(offerRepo, convRepo)
	convService := conversation.NewService(convRepo, offerRepo, msgRepo)
	msgService := message.NewService(msgRepo, convService)
	notifService := notification.NewService(notifRepo)
	negService := negotiation.NewService(offerService, convService, msgService, notifService)

	hub := message.NewHub(convService)

	authHandler := auth.NewHandler(authService)
	categoryHandler := category.NewHandler(categoryRepo)
	offerHandler := offer.NewHandler(offerService)
	convHandler := conversation.NewHandler(convService)
	msgHandler := message.NewHandler(msgService, hub, j, convService)
	negHandler := negotiation.NewHandler(negService, hub)
	notifHandler := notification.NewHandler(notifService)

	r := gin.Default()

	authMw := middleware.Auth(j)

	v1 := r.Group("/api/v1")
	{
		// public
		auth.RegisterRoutes(v1, authHandler, authMw)
		category.RegisterRoutes(v1, categoryHandler)

		// protected
		protected := v1.Group("/", authMw)
		{
			offer.RegisterRoutes(protected, offerHandler)
			conversation.RegisterRoutes(protected, convHandler)
		}

		message.RegisterRoutes(v1, msgHandler, authMw)
		negotiation.RegisterRoutes(v1, negHandler, authMw)
		notification.RegisterRoutes(v1, notifHandler, authMw)
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
