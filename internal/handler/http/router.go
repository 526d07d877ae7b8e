package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/communityshop/pkg/health"
	"github.com/utafrali/communityshop/pkg/httputil"
	"github.com/utafrali/communityshop/pkg/middleware"
)

// RouterConfig carries the HTTP settings the router needs.
type RouterConfig struct {
	ServiceName        string
	Environment        string
	CORSAllowedOrigins []string
	AuthRateLimitRPS   int
	AuthRateLimitBurst int
	PprofAllowedCIDRs  []string
	ListCacheMaxAge    int
	RequestTimeout     time.Duration
}

// Services groups the use cases exposed over HTTP.
type Services struct {
	Products ProductService
	Reviews  ReviewService
	Users    UserService
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	cfg RouterConfig,
	svc Services,
	validateToken middleware.TokenValidator,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID"},
		ExposedHeaders: []string{"X-Correlation-ID"},
		Environment:    cfg.Environment,
	}))
	r.Use(middleware.Recovery(logger))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Community Shopping API is running"})
	})

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	requireAuth := middleware.Auth(validateToken)

	productHandler := NewProductHandler(svc.Products, logger)
	reviewHandler := NewReviewHandler(svc.Reviews, logger)

	// Updates check the body format inside the handler, after ownership.
	r.Route("/api/products", func(r chi.Router) {
		r.With(middleware.CacheControl(cfg.ListCacheMaxAge)).Get("/", productHandler.ListProducts)
		r.With(requireAuth, ContentTypeJSON).Post("/", productHandler.CreateProduct)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", productHandler.GetProduct)
			r.With(requireAuth).Put("/", productHandler.UpdateProduct)
			r.With(requireAuth).Delete("/", productHandler.DeleteProduct)

			r.Get("/reviews", reviewHandler.ListReviews)
			r.With(requireAuth, ContentTypeJSON).Post("/reviews", reviewHandler.AddReview)
		})
	})

	userHandler := NewUserHandler(svc.Users, logger)

	r.Route("/api/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, logger))
			r.Post("/signup", userHandler.Signup)
			r.Post("/login", userHandler.Login)
		})

		r.Get("/{id}", userHandler.GetProfile)
		r.With(requireAuth).Put("/{id}", userHandler.UpdateProfile)
	})

	return r
}
