package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/glam-abaya/cartstore/internal/core/domain"
	"github.com/glam-abaya/cartstore/internal/core/service"
)

type HTTPHandler struct {
	carts  *service.Registry
	logger *zap.Logger
}

func NewHTTPHandler(carts *service.Registry, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{carts: carts, logger: logger}
}

// NewRouter mounts the cart API with CORS for the storefront origins.
func NewRouter(h *HTTPHandler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", SessionHeader, UserHeader},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(Identify)
		r.Get("/", h.GetCart)
		r.Delete("/", h.Clear)
		r.Post("/open", h.visibility((*service.CartStore).Open))
		r.Post("/close", h.visibility((*service.CartStore).Close))
		r.Post("/toggle", h.visibility((*service.CartStore).Toggle))

		r.Post("/items", h.AddItem)
		r.Route("/items/{productID}", func(r chi.Router) {
			r.Delete("/", h.RemoveItem)
			r.Put("/quantity", h.SetQuantity)
			r.Post("/increment", h.Increment)
			r.Post("/decrement", h.Decrement)
		})
	})

	return r
}

// cart resolves the session's store, answering 503 itself when the slot
// cannot be read.
func (h *HTTPHandler) cart(w http.ResponseWriter, r *http.Request) (*service.CartStore, bool) {
	store, err := h.carts.Get(r.Context(), SessionFrom(r.Context()))
	if err != nil {
		h.logger.Warn("cart unavailable", zap.String("session_id", SessionFrom(r.Context())), zap.Error(err))
		writeError(w, r, http.StatusServiceUnavailable, "cart temporarily unavailable")
		return nil, false
	}
	return store, true
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cart(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, NewCartView(store))
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Product.ID == "" || req.Quantity < 0 {
		writeError(w, r, http.StatusBadRequest, "missing required fields")
		return
	}

	store, ok := h.cart(w, r)
	if !ok {
		return
	}
	store.AddItem(r.Context(), req.Product, req.Quantity, req.Size)
	render.JSON(w, r, NewCartView(store))
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cart(w, r)
	if !ok {
		return
	}
	store.RemoveItem(r.Context(), productParam(r), sizeParam(r))
	render.JSON(w, r, NewCartView(store))
}

func (h *HTTPHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	store, ok := h.cart(w, r)
	if !ok {
		return
	}
	store.SetQuantity(r.Context(), productParam(r), req.Size, req.Quantity)
	render.JSON(w, r, NewCartView(store))
}

func (h *HTTPHandler) Increment(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cart(w, r)
	if !ok {
		return
	}
	store.Increment(r.Context(), productParam(r), sizeParam(r))
	render.JSON(w, r, NewCartView(store))
}

func (h *HTTPHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cart(w, r)
	if !ok {
		return
	}
	store.Decrement(r.Context(), productParam(r), sizeParam(r))
	render.JSON(w, r, NewCartView(store))
}

func (h *HTTPHandler) Clear(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cart(w, r)
	if !ok {
		return
	}
	store.Clear(r.Context())
	render.JSON(w, r, NewCartView(store))
}

func (h *HTTPHandler) visibility(apply func(*service.CartStore)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := h.cart(w, r)
	if !ok {
		return
	}
		apply(store)
		render.JSON(w, r, NewCartView(store))
	}
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func productParam(r *http.Request) domain.ProductID {
	return domain.ProductID(chi.URLParam(r, "productID"))
}

func sizeParam(r *http.Request) domain.Size {
	return domain.Size(r.URL.Query().Get("size"))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Success: false, Message: message})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
