package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"edu-subscription-platform/internal/catalog"
	"edu-subscription-platform/internal/config"
	"edu-subscription-platform/internal/usecase"
)

// Deps are the use cases the HTTP surface delegates to.
type Deps struct {
	Catalog     *catalog.Catalog
	Users       usecase.UserUseCase
	Checkout    usecase.CheckoutUseCase
	Payments    usecase.PaymentUseCase
	Courses     usecase.CourseUseCase
	Enrollments usecase.EnrollmentUseCase
	Auth        *AuthManager
	// Ready reports backing-store health for /health; nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	cfg         config.HTTPConfig
	catalog     *catalog.Catalog
	users       usecase.UserUseCase
	checkout    usecase.CheckoutUseCase
	payments    usecase.PaymentUseCase
	courses     usecase.CourseUseCase
	enrollments usecase.EnrollmentUseCase
	auth        *AuthManager
	ready       func(ctx context.Context) error
	log         *zerolog.Logger

	srv *http.Server
}

func NewServer(cfg config.HTTPConfig, d Deps, logger *zerolog.Logger) *Server {
	return &Server{
		cfg:         cfg,
		catalog:     d.Catalog,
		users:       d.Users,
		checkout:    d.Checkout,
		payments:    d.Payments,
		courses:     d.Courses,
		enrollments: d.Enrollments,
		auth:        d.Auth,
		ready:       d.Ready,
		log:         logger,
	}
}

// Router builds the full handler: middleware chain, /api routes, health and metrics.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		TraceID(),
		RequestLog(s.log),
		Recover(s.log),
		CORS(s.cfg.CORSOrigins),
	)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(Timeout(s.cfg.RequestTimeout))
		}
		Register(r, s)
	})
	return r
}

// Register mounts the API routes on r.
func Register(r chi.Router, s *Server) {
	r.Get("/subscription/plans", s.handlePlans)
	r.Get("/learning-framework", s.handleFramework)

	// Webhooks authenticate by signature, not bearer token.
	r.Post("/webhook/stripe", s.handleStripeWebhook)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate(false))
		r.Get("/courses", s.handleListCourses)
		r.Get("/courses/{courseId}", s.handleGetCourse)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate(true))
		r.Post("/subscription/checkout", s.handleCheckout)
		r.Get("/payment/status/{sessionId}", s.handlePaymentStatus)
		r.Get("/payment/transactions", s.handleTransactions)
		r.Get("/me/subscription", s.handleMySubscription)
		r.Get("/courses/{courseId}/videos/{videoId}/stream", s.handleStreamVideo)
		r.Post("/enrollments/{courseId}", s.handleEnroll)
		r.Get("/enrollments/{courseId}", s.handleGetEnrollment)
		r.Get("/my-enrollments", s.handleMyEnrollments)
		r.Get("/learning-path", s.handleLearningPath)
		r.Put("/enrollments/{courseId}/progress", s.handleProgress)
	})
}

func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Port).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.log.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
