package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/jewelry-miniapp/api/controllers"
	cartcontrollers "github.com/angelmondragon/jewelry-miniapp/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/jewelry-miniapp/api/controllers/orders"
	"github.com/angelmondragon/jewelry-miniapp/api/middleware"
	catalogsvc "github.com/angelmondragon/jewelry-miniapp/internal/catalog"
	checkoutsvc "github.com/angelmondragon/jewelry-miniapp/internal/checkout"
	ordersvc "github.com/angelmondragon/jewelry-miniapp/internal/orders"
	"github.com/angelmondragon/jewelry-miniapp/pkg/config"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
)

// Deps carries everything the bridge routes need.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Host      controllers.Host
	Cart      cartcontrollers.Controller
	Favorites controllers.Favorites
	Catalog   catalogsvc.Service
	Checkout  checkoutsvc.Service
	Orders    ordersvc.Service
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer  prometheus.Gatherer
	Readiness map[string]controllers.Pinger
}

// NewRouter builds the HTTP surface the WebView shell talks to.
func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/host", func(r chi.Router) {
			r.Get("/", controllers.HostState(deps.Host, logg))
			r.Post("/ready", controllers.HostReady(deps.Host, cfg.API.TelegramBotToken, logg))
		})

		r.Group(func(r chi.Router) {
			var users middleware.UserSource
			if deps.Host != nil {
				users = deps.Host
			}
			r.Use(middleware.TelegramInitData(middleware.TelegramPolicy{
				BotToken: cfg.API.TelegramBotToken,
				Require:  cfg.API.TelegramStrict,
			}, users, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
				r.Delete("/", cartcontrollers.CartClear(deps.Cart, logg))
				r.Post("/items", cartcontrollers.CartAddItem(deps.Cart, deps.Catalog, logg))
				r.Patch("/items/{lineId}", cartcontrollers.CartUpdateItem(deps.Cart, logg))
				r.Delete("/items/{lineId}", cartcontrollers.CartRemoveItem(deps.Cart, logg))
				r.Post("/open", cartcontrollers.CartVisibility(deps.Cart, true, logg))
				r.Post("/close", cartcontrollers.CartVisibility(deps.Cart, false, logg))
				r.Post("/sync", cartcontrollers.CartSync(deps.Cart, logg))
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", controllers.FavoritesList(deps.Favorites, logg))
				r.Delete("/", controllers.FavoritesClear(deps.Favorites, logg))
				r.Post("/{productId}/toggle", controllers.FavoritesToggle(deps.Favorites, deps.Catalog, logg))
				r.Delete("/{productId}", controllers.FavoritesRemove(deps.Favorites, logg))
			})

			r.Route("/catalog", func(r chi.Router) {
				r.Get("/home", controllers.CatalogHome(deps.Catalog, logg))
				r.Get("/products", controllers.CatalogProducts(deps.Catalog, logg))
				r.Get("/products/{productId}", controllers.CatalogProduct(deps.Catalog, logg))
				r.Get("/categories", controllers.CatalogCategories(deps.Catalog, logg))
				r.Get("/categories/{slug}/products", controllers.CatalogCategoryProducts(deps.Catalog, logg))
				r.Get("/search", controllers.CatalogSearch(deps.Catalog, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/quote", controllers.CheckoutQuote(deps.Checkout, logg))
				r.Post("/", controllers.Checkout(deps.Checkout, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(deps.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			})
		})
	})

	return r
}
