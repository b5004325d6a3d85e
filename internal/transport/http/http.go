package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/kiosklabs/kiosk-sync/internal/service/models/order"
	"github.com/kiosklabs/kiosk-sync/internal/service/models/salesreport"
	"github.com/kiosklabs/kiosk-sync/internal/service/services/syncsvc"
	"github.com/kiosklabs/kiosk-sync/internal/transport/http/dashboard"
	"github.com/kiosklabs/kiosk-sync/internal/transport/http/health"
	"github.com/kiosklabs/kiosk-sync/internal/transport/http/kiosk"
	listorders "github.com/kiosklabs/kiosk-sync/internal/transport/http/list_orders"
	uploadorders "github.com/kiosklabs/kiosk-sync/internal/transport/http/upload_orders"
	"github.com/kiosklabs/kiosk-sync/pkg/http/middleware/apikey"
	"github.com/kiosklabs/kiosk-sync/pkg/http/middleware/trace"
	"github.com/kiosklabs/kiosk-sync/pkg/logger"
)

type service interface {
	UploadBatch(ctx context.Context, kioskID string, orders []syncsvc.IncomingOrder) (syncsvc.UploadResult, error)
	ListOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
	GetOrder(ctx context.Context, orderID string) (order.Order, error)
	ExportOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
	SalesByDay(ctx context.Context, windowDays int) ([]salesreport.DailySales, error)
	GetSummary(ctx context.Context, windowDays int) (syncsvc.Summary, error)
	Health(ctx context.Context) syncsvc.HealthStatus
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
}

func NewHTTPTransport(service service) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/health", h.health)
	h.router.Get("/menu", kiosk.Menu)
	h.router.Get("/config", kiosk.Config)

	h.router.Route("/orders", func(r chi.Router) {
		r.With(apikey.NewAPIKeyMiddleware(os.Getenv("KIOSK_API_KEY"))).
			Post("/upload", h.uploadOrders)
	})

	h.router.Route("/admin", func(r chi.Router) {
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{order_id}", h.getOrder)
		r.Get("/sales-by-day", h.salesByDay)
		r.Get("/summary", h.summary)
		r.Get("/export.json", h.exportOrders)
	})
}

func (h *HTTPTransport) uploadOrders(w http.ResponseWriter, r *http.Request) {
	uploadorders.UploadOrders(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	listorders.GetOrder(w, r, h.service)
}

func (h *HTTPTransport) exportOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ExportOrders(w, r, h.service)
}

func (h *HTTPTransport) salesByDay(w http.ResponseWriter, r *http.Request) {
	dashboard.SalesByDay(w, r, h.service)
}

func (h *HTTPTransport) summary(w http.ResponseWriter, r *http.Request) {
	dashboard.Summary(w, r, h.service)
}

func (h *HTTPTransport) health(w http.ResponseWriter, r *http.Request) {
	health.Health(w, r, h.service)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	if viper.GetBool("tracing.enabled") {
		router.Use(trace.NewTraceMiddleware)
	}

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
