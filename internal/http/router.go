// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/kawanlabs/kawan-backend/docs"
	"github.com/kawanlabs/kawan-backend/internal/config"
	"github.com/kawanlabs/kawan-backend/internal/http/handlers"
	"github.com/kawanlabs/kawan-backend/internal/http/middleware"
	"github.com/kawanlabs/kawan-backend/internal/llm"
	"github.com/kawanlabs/kawan-backend/internal/services"
)

// maxRequestBody caps request bodies globally. Sized for a base64 inline
// image attachment plus JSON overhead.
const maxRequestBody int64 = 8 << 20

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency-Key validation (header shape only; replay handling is in
//     the turn service, after authentication resolves the user)
//  8. CORS and Security headers
//
// The rate limiter is group-level, not engine-level: on authenticated routes
// it must run after RequireAuth so buckets key by user id, and the health and
// metrics endpoints stay exempt.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, gateway llm.Gateway, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	r.Use(limitBody(maxRequestBody))

	// Compress responses except SSE streams and the metrics scrape.
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPathsRegexs([]string{
			`^/api/v[0-9]+/projects/[^/]+/messages`,
			`^/metrics$`,
		})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency-Key header validation
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{
		MaxLen: 200,
	}))

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/gateway
	authSvc := services.NewAuthService(db, services.LogMailer{}, cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	projectSvc := services.NewProjectService(db, services.NewProjectRepo())
	turnSvc := services.NewTurnService(db, gateway)
	turnSvc.IdempotencyTTL = cfg.IdempotencyTTL
	gachaSvc := services.NewGachaService(db, turnSvc.Locks)
	storeSvc := services.NewStoreService(db, turnSvc.Locks)

	auth := handlers.NewAuth(authSvc)
	projects := handlers.NewProjects(projectSvc)
	turns := handlers.NewTurns(turnSvc)
	econ := handlers.NewEconomy(gachaSvc, storeSvc)

	requireAuth := middleware.RequireAuth(cfg.Auth.JWTSecret)

	// Per-caller token buckets. Public routes key by IP; authenticated
	// routes register the limiter after RequireAuth so they key by user.
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	limited := rl.Handler()

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Account lifecycle (no token required, IP-bucketed)
		pub := api.Group("", limited)
		pub.POST("/auth/register", auth.Register)
		pub.POST("/auth/verify", auth.Verify)
		pub.POST("/auth/login", auth.Login)

		// Achievement catalog is public, read-only
		pub.GET("/achievements", econ.ListAchievements)

		// Everything else requires a bearer token
		authed := api.Group("", requireAuth, limited)
		{
			authed.GET("/me", auth.Me)
			authed.DELETE("/me", auth.DeleteMe)

			// Projects
			authed.POST("/projects", projects.CreateProject)
			authed.GET("/projects", projects.ListProjects)
			authed.DELETE("/projects/:id", projects.DeleteProject)

			// Messages / turns
			authed.GET("/projects/:id/messages", projects.ListProjectMessages)
			authed.POST("/projects/:id/messages", turns.SendTurn)
			authed.POST("/projects/:id/messages/:mid/regenerate", turns.RegenerateMessage)
			authed.PUT("/projects/:id/messages/:mid", turns.EditMessage)

			// Economy
			authed.POST("/gacha/draw", econ.DrawGacha)
			authed.GET("/modes", econ.ListModes)
			authed.POST("/modes", econ.PurchaseMode)
			authed.POST("/themes/:name/unlock", econ.UnlockTheme)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
