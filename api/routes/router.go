package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	admincontrollers "github.com/atino-shop/atino-backend/api/controllers/adminusers"
	authcontrollers "github.com/atino-shop/atino-backend/api/controllers/auth"
	blogcontrollers "github.com/atino-shop/atino-backend/api/controllers/blog"
	cartcontrollers "github.com/atino-shop/atino-backend/api/controllers/cart"
	commentcontrollers "github.com/atino-shop/atino-backend/api/controllers/comments"
	healthcontrollers "github.com/atino-shop/atino-backend/api/controllers/health"
	ordercontrollers "github.com/atino-shop/atino-backend/api/controllers/orders"
	productcontrollers "github.com/atino-shop/atino-backend/api/controllers/products"
	wishlistcontrollers "github.com/atino-shop/atino-backend/api/controllers/wishlist"
	"github.com/atino-shop/atino-backend/api/middleware"
	authsvc "github.com/atino-shop/atino-backend/internal/auth"
	blogsvc "github.com/atino-shop/atino-backend/internal/blog"
	cartsvc "github.com/atino-shop/atino-backend/internal/cart"
	checkoutsvc "github.com/atino-shop/atino-backend/internal/checkout"
	commentsvc "github.com/atino-shop/atino-backend/internal/comments"
	ordersvc "github.com/atino-shop/atino-backend/internal/orders"
	productsvc "github.com/atino-shop/atino-backend/internal/products"
	usersvc "github.com/atino-shop/atino-backend/internal/users"
	wishlistsvc "github.com/atino-shop/atino-backend/internal/wishlist"
	"github.com/atino-shop/atino-backend/pkg/auth/session"
	"github.com/atino-shop/atino-backend/pkg/config"
	"github.com/atino-shop/atino-backend/pkg/logger"
	"github.com/atino-shop/atino-backend/pkg/metrics"
	pkgredis "github.com/atino-shop/atino-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Grouping them in a struct
// keeps the main wiring readable as the service list grows.
type Deps struct {
	Cfg    *config.Config
	Logg   *logger.Logger
	DB     healthcontrollers.Pinger
	Redis  *pkgredis.Client
	HTTP   *metrics.HTTPMetrics
	Prom   prometheus.Gatherer
	Verify session.AccessSessionChecker

	Auth     authsvc.Service
	Products productsvc.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   ordersvc.Service
	Comments commentsvc.Service
	Wishlist wishlistsvc.Service
	Blog     blogsvc.Service
	Users    usersvc.Service
}

// NewRouter assembles the full route table with its middleware chain.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Cfg
	logg := deps.Logg

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if deps.HTTP != nil {
		r.Use(middleware.Metrics(deps.HTTP))
	}
	r.Use(middleware.CORS(cfg.HTTP))

	var idemStore pkgredis.IdempotencyStore
	var cachePinger healthcontrollers.Pinger
	if deps.Redis != nil {
		idemStore = deps.Redis
		cachePinger = deps.Redis
	}

	authed := middleware.Auth(cfg.JWT, deps.Verify, logg)
	maybeAuthed := middleware.OptionalAuth(cfg.JWT, deps.Verify, logg)
	adminOnly := middleware.RequireAdmin(logg)
	idempotent := middleware.Idempotency(idemStore, logg)

	r.Get("/health", healthcontrollers.Check(cfg, deps.DB, cachePinger, logg))
	if deps.Prom != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Prom, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authcontrollers.Register(deps.Auth, logg))
			r.Post("/login", authcontrollers.Login(deps.Auth, logg))
			r.Post("/refresh", authcontrollers.Refresh(deps.Auth, cfg.JWT, logg))

			r.Group(func(r chi.Router) {
				r.Use(authed)
				r.Post("/logout", authcontrollers.Logout(deps.Auth, logg))
				r.Get("/me", authcontrollers.Me(deps.Auth, logg))
				r.Put("/profile", authcontrollers.UpdateProfile(deps.Auth, logg))
				r.Put("/password", authcontrollers.ChangePassword(deps.Auth, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productcontrollers.List(deps.Products, logg))
			r.Get("/categories", productcontrollers.Categories(deps.Products, logg))
			r.Get("/{id}", productcontrollers.Fetch(deps.Products, logg))

			r.Group(func(r chi.Router) {
				r.Use(authed, adminOnly)
				r.Post("/", productcontrollers.Create(deps.Products, logg))
				r.Put("/{id}", productcontrollers.Update(deps.Products, logg))
				r.Delete("/{id}", productcontrollers.Delete(deps.Products, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authed)
			r.Get("/", cartcontrollers.Fetch(deps.Cart, logg))
			r.Post("/", cartcontrollers.Add(deps.Cart, logg))
			r.Delete("/", cartcontrollers.Clear(deps.Cart, logg))
			r.Get("/count", cartcontrollers.Count(deps.Cart, logg))
			r.Put("/{productId}", cartcontrollers.UpdateItem(deps.Cart, logg))
			r.Delete("/{productId}", cartcontrollers.RemoveItem(deps.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authed)
			r.With(idempotent).Post("/", ordercontrollers.Place(deps.Checkout, logg))
			r.Get("/", ordercontrollers.ListMine(deps.Orders, logg))

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/admin/all", ordercontrollers.AdminList(deps.Orders, logg))
				r.Get("/admin/stats", ordercontrollers.AdminStats(deps.Orders, logg))
				r.Put("/{id}/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
			})

			r.Get("/{id}", ordercontrollers.Fetch(deps.Orders, logg))
			r.With(idempotent).Put("/{id}/cancel", ordercontrollers.Cancel(deps.Orders, logg))
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/{productId}", commentcontrollers.ListByProduct(deps.Comments, logg))

			r.Group(func(r chi.Router) {
				r.Use(authed)
				r.Get("/can-comment/{productId}", commentcontrollers.Eligibility(deps.Comments, logg))
				r.Post("/", commentcontrollers.Create(deps.Comments, logg))
				r.Put("/{id}", commentcontrollers.Update(deps.Comments, logg))
				r.Delete("/{id}", commentcontrollers.Delete(deps.Comments, logg))
			})
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(authed)
			r.Get("/", wishlistcontrollers.Fetch(deps.Wishlist, logg))
			r.Post("/", wishlistcontrollers.Add(deps.Wishlist, logg))
			r.Delete("/", wishlistcontrollers.Clear(deps.Wishlist, logg))
			r.Get("/count", wishlistcontrollers.Count(deps.Wishlist, logg))
			r.Delete("/{productId}", wishlistcontrollers.Remove(deps.Wishlist, logg))
		})

		r.Route("/blog", func(r chi.Router) {
			// Optional auth on the public reads so admins see drafts
			// through the same endpoints.
			r.With(maybeAuthed).Get("/", blogcontrollers.List(deps.Blog, logg))
			r.With(maybeAuthed).Get("/{id}", blogcontrollers.Fetch(deps.Blog, logg))

			r.With(authed).Put("/{id}/like", blogcontrollers.ToggleLike(deps.Blog, logg))

			r.Group(func(r chi.Router) {
				r.Use(authed, adminOnly)
				r.Post("/", blogcontrollers.Create(deps.Blog, deps.Auth, logg))
				r.Put("/{id}", blogcontrollers.Update(deps.Blog, logg))
				r.Delete("/{id}", blogcontrollers.Delete(deps.Blog, logg))
			})
		})

		r.Route("/admin/users", func(r chi.Router) {
			r.Use(authed, adminOnly)
			r.Get("/", admincontrollers.List(deps.Users, logg))
			r.Get("/stats", admincontrollers.Stats(deps.Users, logg))
			r.Get("/{id}", admincontrollers.Fetch(deps.Users, logg))
			r.Put("/{id}/status", admincontrollers.UpdateStatus(deps.Users, logg))
			r.Put("/{id}/role", admincontrollers.UpdateRole(deps.Users, logg))
		})
	})

	return r
}
