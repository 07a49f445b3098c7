package routes

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/clinic-backend/api/controllers"
	"github.com/angelmondragon/clinic-backend/api/middleware"
	"github.com/angelmondragon/clinic-backend/internal/auth"
	"github.com/angelmondragon/clinic-backend/internal/gallery"
	"github.com/angelmondragon/clinic-backend/internal/promotions"
	"github.com/angelmondragon/clinic-backend/internal/services"
	"github.com/angelmondragon/clinic-backend/internal/staff"
	"github.com/angelmondragon/clinic-backend/internal/timeline"
	"github.com/angelmondragon/clinic-backend/pkg/auth/session"
	"github.com/angelmondragon/clinic-backend/pkg/config"
	"github.com/angelmondragon/clinic-backend/pkg/enums"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
	"github.com/angelmondragon/clinic-backend/pkg/metrics"
)

// Dependencies is everything the HTTP surface is built from.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Sessions session.AccessSessionChecker
	// RateLimits may be nil, which disables login throttling.
	RateLimits middleware.RateLimiterStore
	// Metrics defaults to prometheus.DefaultGatherer when nil.
	Metrics     prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Auth              auth.Service
	Promotions        promotions.Service
	Services          services.Service
	Staff             staff.Service
	Timeline          timeline.Service
	GalleryCategories gallery.CategoryService
	GalleryImages     gallery.ImageService
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	maxUpload := cfg.Storage.MaxUploadBytes()

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	gatherer := deps.Metrics
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	uploads := cfg.Storage.UploadsMount()
	r.Handle(uploads+"/*", http.StripPrefix(uploads+"/", http.FileServer(noListing{http.Dir(cfg.Storage.UploadsDir)})))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/promotions", controllers.PublicPromotions(deps.Promotions, logg))
		r.Get("/services", controllers.ListServices(deps.Services, logg))
		r.Get("/staff", controllers.ListStaff(deps.Staff, logg))
		r.Get("/timeline", controllers.ListTimeline(deps.Timeline, logg))
		r.Get("/gallery/categories", controllers.GalleryTree(deps.GalleryCategories, logg))
		r.Get("/gallery/categories/{categoryId}/images", controllers.CategoryImages(deps.GalleryImages, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimits, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, deps.Sessions, logg),
			middleware.RequireRole(logg, enums.UserRoleAdmin, enums.UserRoleEditor),
		)

		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", controllers.AdminPromotions(deps.Promotions, logg))
			r.Post("/", controllers.CreatePromotion(deps.Promotions, maxUpload, logg))
			r.Patch("/reorder", controllers.ReorderPromotions(deps.Promotions, logg))
			r.Get("/{id}", controllers.GetPromotion(deps.Promotions, logg))
			r.Put("/{id}", controllers.UpdatePromotion(deps.Promotions, maxUpload, logg))
			r.Delete("/{id}", controllers.DeletePromotion(deps.Promotions, logg))
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", controllers.ListServices(deps.Services, logg))
			r.Post("/", controllers.CreateService(deps.Services, maxUpload, logg))
			r.Patch("/reorder", controllers.ReorderServices(deps.Services, logg))
			r.Get("/{id}", controllers.GetService(deps.Services, logg))
			r.Put("/{id}", controllers.UpdateService(deps.Services, maxUpload, logg))
			r.Delete("/{id}", controllers.DeleteService(deps.Services, logg))
		})

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", controllers.ListStaff(deps.Staff, logg))
			r.Post("/", controllers.CreateStaffMember(deps.Staff, maxUpload, logg))
			r.Get("/{id}", controllers.GetStaffMember(deps.Staff, logg))
			r.Put("/{id}", controllers.UpdateStaffMember(deps.Staff, maxUpload, logg))
			r.Delete("/{id}", controllers.DeleteStaffMember(deps.Staff, logg))
		})

		r.Route("/timeline", func(r chi.Router) {
			r.Get("/", controllers.ListTimeline(deps.Timeline, logg))
			r.Post("/", controllers.CreateTimelineEntry(deps.Timeline, maxUpload, logg))
			r.Patch("/reorder", controllers.ReorderTimeline(deps.Timeline, logg))
			r.Get("/{id}", controllers.GetTimelineEntry(deps.Timeline, logg))
			r.Put("/{id}", controllers.UpdateTimelineEntry(deps.Timeline, maxUpload, logg))
			r.Delete("/{id}", controllers.DeleteTimelineEntry(deps.Timeline, logg))
		})

		r.Route("/gallery/categories", func(r chi.Router) {
			r.Get("/", controllers.ListGalleryCategories(deps.GalleryCategories, logg))
			r.Get("/tree", controllers.GalleryTree(deps.GalleryCategories, logg))
			r.Post("/", controllers.CreateGalleryCategory(deps.GalleryCategories, maxUpload, logg))
			r.Patch("/reorder", controllers.ReorderGalleryCategories(deps.GalleryCategories, logg))
			r.Get("/{id}", controllers.GetGalleryCategory(deps.GalleryCategories, logg))
			r.Put("/{id}", controllers.UpdateGalleryCategory(deps.GalleryCategories, maxUpload, logg))
			r.Delete("/{id}", controllers.DeleteGalleryCategory(deps.GalleryCategories, logg))
		})

		r.Route("/gallery/images", func(r chi.Router) {
			r.Get("/", controllers.ListGalleryImages(deps.GalleryImages, logg))
			r.Post("/", controllers.CreateGalleryImage(deps.GalleryImages, maxUpload, logg))
			r.Patch("/reorder", controllers.ReorderGalleryImages(deps.GalleryImages, logg))
			r.Get("/{id}", controllers.GetGalleryImage(deps.GalleryImages, logg))
			r.Put("/{id}", controllers.UpdateGalleryImage(deps.GalleryImages, maxUpload, logg))
			r.Delete("/{id}", controllers.DeleteGalleryImage(deps.GalleryImages, logg))
		})
	})

	return r
}

// noListing hides directory indexes under the uploads root.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
