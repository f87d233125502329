package app

import (
	"net/http"

	"github.com/AntonTsoy/book-catalog/internal/auth"
	"github.com/AntonTsoy/book-catalog/internal/cache"
	"github.com/AntonTsoy/book-catalog/internal/catalog"
	"github.com/AntonTsoy/book-catalog/internal/middleware"
	"github.com/AntonTsoy/book-catalog/internal/token"
	"github.com/AntonTsoy/book-catalog/internal/users"
	"github.com/AntonTsoy/book-catalog/internal/validation"
	"github.com/AntonTsoy/book-catalog/pkg/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const welcomeMessage = "Welcome to the API! 🚀"

func setupHTTP(cfg *config.Config, infra *Infra, log *zap.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := token.NewService(tokenConfig(cfg), cache.NewStore(infra.Redis, log), log)
	if err != nil {
		return nil, err
	}

	return newRouter(routerDeps{
		tokens:  tokens,
		users:   users.NewService(users.NewUserRepository(infra.DB)),
		catalog: catalog.NewPostgresRepository(infra.DB),
		log:     log,
	})
}

func tokenConfig(cfg *config.Config) token.Config {
	return token.Config{
		Issuer:        cfg.TokenIssuer,
		AccessSecret:  cfg.AccessTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshTTL:    cfg.RefreshTokenTTL,
		StoreTTL:      cfg.RefreshStoreTTL,
	}
}

type routerDeps struct {
	tokens  *token.Service
	users   *users.Service
	catalog catalog.Repository
	log     *zap.Logger
}

func newRouter(deps routerDeps) (*gin.Engine, error) {
	if err := validation.Setup(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(deps.log),
		middleware.ErrorHandler(deps.log),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": welcomeMessage})
	})

	authCheck := middleware.AuthCheck(deps.tokens)
	adminCheck := middleware.AdminCheck(deps.users, deps.log)

	auth.NewAuthHandler(auth.NewService(deps.users, deps.tokens, deps.log)).RegisterRoutes(api)
	catalog.NewHandler(catalog.NewService(deps.catalog, deps.log)).RegisterRoutes(api, authCheck, adminCheck)

	router.NoRoute(middleware.NoRoute)

	return router, nil
}
