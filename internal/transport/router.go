package transport

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/nikolayk812/storefront/internal/metrics"
	"golang.org/x/time/rate"
)

const tokenCookie = "token"

type Options struct {
	Location       *time.Location
	MediaRoot      string
	MaxAvatarBytes int64
	SecureCookie   bool
	TokenTTL       time.Duration

	SignInRate  rate.Limit
	SignInBurst int

	Metrics *metrics.Metrics
	// Health reports whether the storage behind the services is reachable.
	Health func(ctx context.Context) error
}

type handler struct {
	svc  Services
	opts Options
}

func Router(svc Services, opts Options) (http.Handler, error) {
	if svc.Catalog == nil || svc.Baskets == nil || svc.Orders == nil ||
		svc.Payments == nil || svc.Profiles == nil || svc.Auth == nil {
		return nil, errors.New("all services are required")
	}
	if opts.Metrics == nil {
		return nil, errors.New("metrics is nil")
	}
	if opts.Health == nil {
		return nil, errors.New("health check is nil")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.MaxAvatarBytes <= 0 {
		opts.MaxAvatarBytes = 2 << 20
	}

	h := &handler{svc: svc, opts: opts}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.Use(logMiddleware, metricsMiddleware(opts.Metrics), viewerMiddleware(svc.Auth))

	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = r.NotFoundHandler
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler

	signIn := newLimiter(opts.SignInRate, opts.SignInBurst)
	api.Handle("/sign-in/", rateLimit(signIn, http.HandlerFunc(h.signIn))).Methods(http.MethodPost)
	api.HandleFunc("/sign-up/", h.signUp).Methods(http.MethodPost)
	api.HandleFunc("/sign-out", h.signOut).Methods(http.MethodPost)

	api.HandleFunc("/profile/", h.getProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile/", h.updateProfile).Methods(http.MethodPost)
	api.HandleFunc("/profile/avatar", h.updateAvatar).Methods(http.MethodPost)
	api.HandleFunc("/profile/password", h.changePassword).Methods(http.MethodPost)

	api.HandleFunc("/categories", h.categories).Methods(http.MethodGet)
	api.HandleFunc("/catalog/", h.catalog).Methods(http.MethodGet)
	api.HandleFunc("/products/popular", h.popular).Methods(http.MethodGet)
	api.HandleFunc("/products/limited", h.limited).Methods(http.MethodGet)
	api.HandleFunc("/sales/", h.sales).Methods(http.MethodGet)
	api.HandleFunc("/banners", h.banners).Methods(http.MethodGet)
	api.HandleFunc("/tags", h.tags).Methods(http.MethodGet)
	api.HandleFunc("/product/{id:[0-9]+}", h.product).Methods(http.MethodGet)
	api.HandleFunc("/product/{id:[0-9]+}/reviews", h.addReview).Methods(http.MethodPost)

	api.HandleFunc("/basket", h.basket).Methods(http.MethodGet)
	api.HandleFunc("/basket", h.addToBasket).Methods(http.MethodPost)
	api.HandleFunc("/basket", h.removeFromBasket).Methods(http.MethodDelete)

	api.HandleFunc("/orders/", h.openOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders/", h.createOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id:[0-9]+}/", h.order).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id:[0-9]+}/", h.updateOrder).Methods(http.MethodPost)
	api.HandleFunc("/history-order", h.history).Methods(http.MethodGet)

	api.HandleFunc("/payment/{id:[0-9]+}/", h.manualCapture).Methods(http.MethodPost)
	api.HandleFunc("/create-payment/{id:[0-9]+}/", h.startPayment).Methods(http.MethodGet)
	r.HandleFunc("/payment/{id:[0-9]+}/", h.startPayment).Methods(http.MethodGet)
	r.HandleFunc("/payment-success/", h.paymentSuccess).Methods(http.MethodGet)
	r.HandleFunc("/retry-payment/{id:[0-9]+}/", h.retryPayment).Methods(http.MethodGet)

	if opts.MediaRoot != "" {
		r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(filesOnly{http.Dir(opts.MediaRoot)}))).
			Methods(http.MethodGet, http.MethodHead)
	}

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)

	return r, nil
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.opts.Health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db_error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// filesOnly hides directories so uploaded media cannot be enumerated.
type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}

	return file, nil
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Invalid HTTP method")
}
