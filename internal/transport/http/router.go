package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qrdesk-api/internal/application/auth"
	"github.com/qrdesk-api/internal/application/blog"
	"github.com/qrdesk-api/internal/application/qrcode"
	"github.com/qrdesk-api/internal/application/upload"
	"github.com/qrdesk-api/internal/config"
	"github.com/qrdesk-api/internal/domain"
	jwtinfra "github.com/qrdesk-api/internal/infrastructure/jwt"
	"github.com/qrdesk-api/internal/pkg/metrics"
	"github.com/qrdesk-api/internal/transport/http/handler"
	appmiddleware "github.com/qrdesk-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// TokenVerifier checks session tokens for the auth middleware.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// Deps holds the services and collaborators the router dispatches to.
type Deps struct {
	Auth         auth.Service
	Blog         blog.Service
	QRCodes      qrcode.Service
	Uploads      upload.Service
	Tokens       TokenVerifier
	HealthChecks map[string]handler.HealthCheck
}

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of the rate limiter's background sweeper.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.Tokens)
	adminOnly := appmiddleware.RequireRole(domain.RoleAdmin)

	// 5 requests/second, burst of 10, on credential and OTP endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	healthH := handler.NewHealthHandler(deps.HealthChecks)
	authH := handler.NewAuthHandler(deps.Auth)
	blogH := handler.NewBlogHandler(deps.Blog)
	qrH := handler.NewQRCodeHandler(deps.QRCodes)
	uploadH := handler.NewUploadHandler(deps.Uploads)

	r.Get("/health", healthH.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(sensitiveRL.Limit)
				r.Post("/register", authH.Register)
				r.Post("/login", authH.Login)
				r.Post("/verify-email-otp", authH.VerifyEmailOTP)
				r.Post("/verify-forgot-password-otp", authH.VerifyForgotPasswordOTP)
				r.Post("/request-forgot-password-otp", authH.RequestForgotPasswordOTP)
				r.Post("/reset-password", authH.ResetPassword)
				r.Post("/resend-email-otp", authH.ResendEmailOTP)
			})
			r.With(authMw).Get("/me", authH.Me)
		})

		r.Route("/blog", func(r chi.Router) {
			r.Get("/", blogH.List)
			r.Get("/{slug}", blogH.Get)
			r.Group(func(r chi.Router) {
				r.Use(authMw, adminOnly)
				r.Post("/", blogH.Create)
				r.Put("/{slug}", blogH.Update)
				r.Delete("/{slug}", blogH.Delete)
			})
		})

		r.Route("/qrcodes", func(r chi.Router) {
			// Public: the hosted viewer and the scan endpoint.
			r.Get("/public/{shortCode}", qrH.GetPublic)
			r.Get("/redirect/{shortCode}", qrH.Redirect)

			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Post("/create", qrH.Create)
				r.Get("/user", qrH.ListMine)
				r.Get("/user/analytics", qrH.UserAnalytics)
				r.Get("/analytics/{id}", qrH.Analytics)
				r.Get("/realtime-analytics/{id}", qrH.RealTimeAnalytics)
				r.Patch("/pause/{id}", qrH.TogglePause)
				r.Get("/{id}", qrH.Get)
				r.Put("/{id}", qrH.Update)
				r.Delete("/{id}", qrH.Delete)
			})
		})

		r.Route("/upload", func(r chi.Router) {
			r.Use(authMw)
			r.Get("/", uploadH.List)
			r.Post("/logo/image", uploadH.Upload(domain.UploadLogo))
			r.Post("/image", uploadH.Upload(domain.UploadImage))
			r.Post("/pdf", uploadH.Upload(domain.UploadPDF))
			r.Post("/audio", uploadH.Upload(domain.UploadAudio))
		})
	})

	return r
}
