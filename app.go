// @title           Share Link Resolver API
// @version         1.0
// @description     Resolves short-video share links into direct media URLs and metadata, and relays media through this origin.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/vit0-9/dylink_api/config"
	_ "github.com/vit0-9/dylink_api/docs" // Swagger docs
	"github.com/vit0-9/dylink_api/handlers"
	"github.com/vit0-9/dylink_api/logger"
	"github.com/vit0-9/dylink_api/pkg/relay"
	"github.com/vit0-9/dylink_api/pkg/resolver"
	"github.com/vit0-9/dylink_api/pkg/utils"
)

const proxyPath = "/api/proxy"

// App encapsulates all the components of the application
type App struct {
	Router        *gin.Engine
	ParseHandlers *handlers.ParseHandlers
	ProxyHandlers *handlers.ProxyHandlers
	HealthHandler *handlers.HealthHandler

	server *http.Server
}

// NewApp creates and initializes a new application instance
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	// Resolver calls are small and bounded; relay calls stream for as long as
	// the media takes, so only the wait for headers is limited.
	resolverClient := utils.NewHTTPClient(utils.ClientOptions{
		Timeout:       cfg.HTTPTimeout,
		HeaderTimeout: cfg.HeaderTimeout,
	})
	relayClient := utils.NewHTTPClient(utils.ClientOptions{
		HeaderTimeout: cfg.HeaderTimeout,
		Passthrough:   true,
	})

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(logger.Middleware(), gin.Recovery())

	app := &App{
		Router:        router,
		ParseHandlers: handlers.NewParseHandlers(resolver.New(cfg.UpstreamBaseURL(), resolverClient), proxyPath),
		ProxyHandlers: handlers.NewProxyHandlers(relay.New(relayClient, cfg.RelayReferer, cfg.RelayUserAgent)),
		HealthHandler: handlers.NewHealthHandler(cfg.UpstreamHost),
		server:        &http.Server{Handler: router},
	}

	app.setupRoutes()
	return app, nil
}

// setupRoutes defines all the application routes
func (app *App) setupRoutes() {
	app.Router.GET("/api/v1/health", app.HealthHandler.HealthCheckHandler)

	api := app.Router.Group("/api")
	{
		api.GET("/parse", app.ParseHandlers.ParseHandler)
		api.GET("/resolve", app.ParseHandlers.ResolveHandler)
	}

	app.Router.GET(proxyPath, app.ProxyHandlers.ProxyHandler)
	app.Router.HEAD(proxyPath, app.ProxyHandlers.ProxyHandler)
	app.Router.OPTIONS(proxyPath, app.ProxyHandlers.PreflightHandler)

	app.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
}

// Start runs the HTTP server until Shutdown is called.
func (app *App) Start(addr string) error {
	app.server.Addr = addr

	logrus.WithField("addr", addr).Info("API server starting")
	if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (app *App) Shutdown(ctx context.Context) error {
	return app.server.Shutdown(ctx)
}
