package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell/bookstore-backend/api/controllers"
	cartcontrollers "github.com/inkwell/bookstore-backend/api/controllers/cart"
	"github.com/inkwell/bookstore-backend/api/middleware"
	"github.com/inkwell/bookstore-backend/internal/auth"
	booksvc "github.com/inkwell/bookstore-backend/internal/books"
	cartsvc "github.com/inkwell/bookstore-backend/internal/cart"
	categorysvc "github.com/inkwell/bookstore-backend/internal/categories"
	checkoutsvc "github.com/inkwell/bookstore-backend/internal/checkout"
	"github.com/inkwell/bookstore-backend/pkg/auth/session"
	"github.com/inkwell/bookstore-backend/pkg/config"
	"github.com/inkwell/bookstore-backend/pkg/db"
	"github.com/inkwell/bookstore-backend/pkg/enums"
	"github.com/inkwell/bookstore-backend/pkg/logger"
	"github.com/inkwell/bookstore-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessions sessionManager,
	authService auth.Service,
	registerService auth.RegisterService,
	categoryService categorysvc.Service,
	bookService booksvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, sessions, logg)
	requireSeller := middleware.RequireRole(string(enums.UserRoleSeller), logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/public", func(r chi.Router) {
			r.Get("/ping", controllers.PublicPing())
		})

		r.Route("/v1", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
				r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerService, authService, logg))
				r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
				r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.APIRateLimit(cfg.APIRateLimit, redisClient, logg))

				// Catalog reads are public; writes are seller-only.
				r.Route("/books", func(r chi.Router) {
					r.Get("/", controllers.BookList(bookService, logg))
					r.Get("/{bookId}", controllers.BookDetail(bookService, logg))

					r.Group(func(r chi.Router) {
						r.Use(requireAuth, requireSeller)
						r.Post("/", controllers.BookCreate(bookService, logg))
						r.Put("/{bookId}", controllers.BookUpdate(bookService, logg))
						r.Patch("/{bookId}/stock", controllers.BookSetStock(bookService, logg))
						r.Delete("/{bookId}", controllers.BookDelete(bookService, logg))
					})
				})

				r.Route("/categories", func(r chi.Router) {
					r.Get("/", controllers.CategoryList(categoryService, logg))
					r.Get("/{categoryId}", controllers.CategoryDetail(categoryService, logg))

					r.Group(func(r chi.Router) {
						r.Use(requireAuth, requireSeller)
						r.Post("/", controllers.CategoryCreate(categoryService, logg))
						r.Put("/{categoryId}", controllers.CategoryUpdate(categoryService, logg))
						r.Delete("/{categoryId}", controllers.CategoryDelete(categoryService, logg))
					})
				})

				r.Group(func(r chi.Router) {
					r.Use(requireAuth)

					r.Get("/ping", controllers.PrivatePing())

					r.Route("/cart", func(r chi.Router) {
						r.Get("/", cartcontrollers.CartFetch(cartService, logg))
						r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
						r.Put("/items", cartcontrollers.CartUpdateItem(cartService, logg))
						r.Delete("/items/{bookId}", cartcontrollers.CartRemoveItem(cartService, logg))
						r.Delete("/", cartcontrollers.CartClear(cartService, logg))
					})

					r.Post("/checkout", controllers.Checkout(checkoutService, logg))
				})
			})
		})
	})

	return r
}
