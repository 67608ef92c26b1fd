package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub-server-go/internal/features/enrollment"
	"github.com/studyhub/studyhub-server-go/internal/features/payment"
	"github.com/studyhub/studyhub-server-go/internal/features/profile"
	"github.com/studyhub/studyhub-server-go/internal/middleware"
	"github.com/studyhub/studyhub-server-go/pkg/cache"
	"github.com/studyhub/studyhub-server-go/pkg/health"
)

// Dependencies carries everything the route tree needs.
type Dependencies struct {
	DB        *gorm.DB
	Logger    *slog.Logger
	JWTSecret string

	Gateway  payment.Gateway
	Mailer   interface {
		payment.Mailer
		enrollment.Mailer
	}
	Uploader    profile.Uploader
	Cache       cache.Client
	ImageFolder string
}

// Register wires every route group onto the engine.
func Register(r *gin.Engine, deps Dependencies) {
	healthHandler := health.NewHandler(deps.DB, deps.Logger)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/version", healthHandler.VersionInfo)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.Authenticate(deps.DB, deps.JWTSecret)

	enroller := enrollment.NewService(deps.DB, deps.Logger, deps.Mailer)
	paymentHandler := payment.NewHandler(deps.DB, deps.Logger, deps.Gateway, deps.Mailer, enroller)
	profileHandler := profile.NewHandler(deps.DB, deps.Logger, deps.Uploader, deps.Cache, deps.ImageFolder)

	api := r.Group("/api/v1")
	payment.RegisterRoutes(api, paymentHandler, auth, middleware.RequireRoles)
	profile.RegisterRoutes(api, profileHandler, auth, middleware.RequireRoles)
}
