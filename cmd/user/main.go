// Command user runs the account service: registration, login and
// profile management behind its own HTTP API, fronted by the gateway.
package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"eventix/internal/auth"
	"eventix/internal/user"
	"eventix/pkg/config"
	"eventix/pkg/httpserver"
	"eventix/pkg/logger"

	_ "eventix/internal/docs"
)

func main() {
	cfg := config.Load(config.DefaultConfigFile)

	log := logger.New("user", cfg.App.Env, cfg.Logging.Dir)
	accessLog := logger.NewAccessLogger(cfg.Logging.Dir)
	defer log.Sync()

	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	if err := db.AutoMigrate(&user.User{}); err != nil {
		log.Fatal("migrate user schema", zap.Error(err))
	}

	repo := user.NewRepository(db)
	svc := user.NewService(repo, log)
	handler := user.NewHandler(svc, &cfg.Security, log)
	authMw := auth.NewMiddleware(log, accessLog, &cfg.Security)

	r := gin.New()
	r.Use(gin.Recovery(), authMw.RequestID(), authMw.AccessLog())
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	user.RegisterRoutes(api, handler)

	protected := api.Group("")
	protected.Use(authMw.Authn())
	user.RegisterProtectedRoutes(protected, handler)

	httpserver.ServeGraceful(cfg.Server.HTTPAddr, r)
}
