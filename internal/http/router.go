package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/impilo/fieldreport/internal/activity"
	"github.com/impilo/fieldreport/internal/alerts"
	"github.com/impilo/fieldreport/internal/attachment"
	"github.com/impilo/fieldreport/internal/auth"
	"github.com/impilo/fieldreport/internal/config"
	httpmiddleware "github.com/impilo/fieldreport/internal/http/middleware"
	"github.com/impilo/fieldreport/internal/observability"
	"github.com/impilo/fieldreport/internal/profile"
	"github.com/impilo/fieldreport/internal/storage"
	"github.com/impilo/fieldreport/internal/watch"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *auth.Service
	profiles      *profile.Service
	activities    *activity.Service
	attachments   *attachment.Service
	activityRepo  *activity.Repository
	attachRepo    *attachment.Repository
	profileRepo   *profile.Repository
	hub           *watch.Hub
	emitter       *alerts.Emitter
	metrics       *observability.Metrics
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter wires repositories, services and routes.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client,
	hub *watch.Hub, emitter *alerts.Emitter, metrics *observability.Metrics) (http.Handler, error) {

	var uploader storage.Uploader = storage.NoopUploader{}
	switch cfg.Storage.Provider {
	case "", "noop":
		// keeps the default uploader
	case "s3", "r2":
		s3, err := storage.NewS3Uploader(storage.S3Config{
			Endpoint:     cfg.Storage.S3Endpoint,
			Region:       cfg.Storage.S3Region,
			Bucket:       cfg.Storage.S3Bucket,
			AccessKey:    cfg.Storage.S3AccessKey,
			SecretKey:    cfg.Storage.S3SecretKey,
			PublicDomain: cfg.Storage.PublicDomain,
		})
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		uploader = s3
	default:
		return nil, fmt.Errorf("storage: unsupported provider %s", cfg.Storage.Provider)
	}

	profileRepo := profile.NewRepository(pool)
	profileService := profile.NewService(profileRepo, hub)

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := auth.NewService(profileRepo, redisClient, jwtMgr, cfg.JWTRefreshTTL, cfg.ResetTokenTTL)

	activityRepo := activity.NewRepository(pool)
	activityService := activity.NewService(activityRepo, hub, emitter)

	attachRepo := attachment.NewRepository(pool)
	tracker := attachment.NewTracker(cfg.UploadGraceDelay)
	attachLogger := log.With().Str("component", "attachments").Logger()
	attachService := attachment.NewService(attachRepo, uploader, tracker, hub,
		emitter, metrics, attachLogger, cfg.MaxUploadBytes)

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		profiles:      profileService,
		activities:    activityService,
		attachments:   attachService,
		activityRepo:  activityRepo,
		attachRepo:    attachRepo,
		profileRepo:   profileRepo,
		hub:           hub,
		emitter:       emitter,
		metrics:       metrics,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/healthz", h.Health)
		public.Get("/ready", h.Ready)
		public.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))

		public.Route("/v1/auth", func(ar chi.Router) {
			ar.Post("/login", h.Login)
			ar.Post("/refresh", h.Refresh)
			ar.Post("/logout", h.Logout)
			ar.Post("/request-reset", h.RequestPasswordReset)
			ar.Post("/reset-password", h.ResetPassword)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))
		private.Use(httpmiddleware.WithProfile(profileRepo))

		private.Get("/v1/me", h.Me)

		private.Route("/v1/profiles", func(pr chi.Router) {
			pr.Get("/", h.ListProfiles)
			pr.Get("/watch", h.WatchProfiles)
			pr.Get("/{id}", h.GetProfile)
			pr.Patch("/{id}", h.UpdateProfile)
			pr.Group(func(admin chi.Router) {
				admin.Use(httpmiddleware.RequireRoles("Administrator", "Super Administrator"))
				admin.Post("/", h.ProvisionProfile)
				admin.Delete("/{id}", h.DeleteProfile)
			})
			pr.Group(func(super chi.Router) {
				super.Use(httpmiddleware.RequireRoles("Super Administrator"))
				super.Put("/{id}/role", h.ChangeProfileRole)
			})
		})

		private.Route("/v1/activities", func(ac chi.Router) {
			ac.Get("/", h.ListActivities)
			ac.Post("/", h.CreateActivity)
			ac.Get("/watch", h.WatchActivities)
			ac.Get("/{id}", h.GetActivity)
			ac.Delete("/{id}", h.DeleteActivity)
		})

		private.Route("/v1/attachments", func(at chi.Router) {
			at.Get("/", h.ListAttachments)
			at.Post("/", h.CreateAttachment)
			at.Get("/watch", h.WatchAttachments)
			at.Get("/uploads/{id}", h.UploadProgress)
			at.Get("/{id}", h.GetAttachment)
			at.Delete("/{id}", h.DeleteAttachment)
		})

		private.Route("/v1/reports", func(rp chi.Router) {
			rp.Get("/summary", h.ReportSummary)
			rp.Get("/export", h.ReportExport)
		})
	})

	return r, nil
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks downstream dependencies.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.Ping(r.Context()); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "NOT_READY", "database unavailable", nil)
		return
	}
	if err := h.redis.Ping(r.Context()).Err(); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "NOT_READY", "redis unavailable", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
