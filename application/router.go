package application

import (
	"github.com/KOMKZ/yogan-sessionguard/httpx"
	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/KOMKZ/yogan-sessionguard/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// newEngine builds the gin engine with the global middleware chain. Order
// matters: CORS answers preflights first, otelgin opens the span that TraceID
// reads, and CSRFSetup binds a token before any route validates it.
func (a *Application) newEngine() *gin.Engine {
	gin.DefaultWriter = logger.NewGinLogWriter(logger.GetLogger("gin"))
	gin.DefaultErrorWriter = logger.NewGinLogWriter(logger.GetLogger("gin"))
	gin.SetMode(a.config.Server.Mode)

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	if a.config.CORS.Enabled {
		engine.Use(middleware.CORSWithConfig(a.config.CORS.CORSConfig))
	}

	if tm := a.container.Telemetry; tm != nil && tm.IsTracingEnabled() {
		engine.Use(otelgin.Middleware(a.config.Telemetry.ServiceName,
			otelgin.WithTracerProvider(tm.TracerProvider())))
	}

	engine.Use(middleware.TraceID(middleware.DefaultTraceConfig()))
	engine.Use(middleware.RequestLogWithConfig(a.config.RequestLog))
	engine.Use(a.container.HTTPMetrics.Handler())

	if a.config.Httpx.Enable {
		engine.Use(httpx.ErrorLoggingMiddleware(a.config.Httpx))
	}

	engine.Use(middleware.Recovery())
	engine.Use(middleware.CSRFSetup(a.container.CSRF))

	engine.NoRoute(httpx.NoRouteHandler())
	engine.NoMethod(httpx.NoMethodHandler())

	a.registerRoutes(engine)
	return engine
}

func (a *Application) registerRoutes(engine *gin.Engine) {
	c := a.container
	h := &handlers{
		auth:     c.Auth,
		registry: c.Revocation,
		csrf:     c.CSRF,
		checks:   c.Health,
	}
	csrfValidate := middleware.CSRFValidate(c.CSRF)

	engine.GET("/health", h.health)
	engine.GET("/csrf-token", middleware.CSRFProvide(c.CSRF))

	engine.POST("/auth/login", csrfValidate, httpx.Wrap(h.login))

	// a revoked session answers 401 whatever its CSRF header says
	authed := engine.Group("/auth",
		middleware.JWT(c.Tokens),
		middleware.Revocation(c.Revocation),
		csrfValidate,
	)
	authed.GET("/me", h.me)
	authed.GET("/revocation-stats", h.revocationStats)
	authed.POST("/logout", h.logout)
	authed.POST("/logout-all", h.logoutAll)
	authed.POST("/password", httpx.Wrap(h.changePassword))

	api := engine.Group("/api", csrfValidate)
	api.POST("/echo", httpx.Wrap(h.echo))
}
