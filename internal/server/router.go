package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobboard/internal/config"
	"github.com/justsurfingit/jobboard/internal/handlers"
	"github.com/justsurfingit/jobboard/internal/metrics"
	"github.com/justsurfingit/jobboard/internal/middleware"
)

// Handlers groups the route handlers mounted under /api/v1.
type Handlers struct {
	Users     *handlers.UserHandler
	Admins    *handlers.AdminHandler
	Seekers   *handlers.SeekerHandler
	Companies *handlers.CompanyHandler
	Jobs      *handlers.JobHandler
	Resumes   *handlers.ResumeHandler
}

// NewRouter wires gin routes and middleware. limiter may be nil.
// X-Forwarded-For is honoured only from cfg.TrustedProxies.
func NewRouter(cfg config.Config, logger *zap.Logger, db *gorm.DB, m *metrics.HTTP, limiter *middleware.RateLimiter, h Handlers) (*gin.Engine, error) {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.ForwardedByClientIP = true
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(m.Middleware())

	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api/v1")
	api.Use(limiter.Handler())
	{
		api.GET("/health", handlers.HealthCheck(db))

		h.Users.Register(api.Group("/users"))
		h.Admins.Register(api.Group("/admins"))

		seekers := api.Group("/seekers")
		h.Seekers.Register(seekers)
		h.Resumes.Register(seekers)

		h.Companies.Register(api.Group("/companies"))
		h.Jobs.Register(api.Group("/jobs"))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{
			Error:     "route not found",
			Code:      "not_found",
			RequestID: c.GetString(middleware.RequestIDKey),
		})
	})

	return r, nil
}
