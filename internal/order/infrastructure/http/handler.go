package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	catalogapp "github.com/dmehra2102/storefront/internal/catalog/application"
	"github.com/dmehra2102/storefront/internal/order/application"
	"github.com/dmehra2102/storefront/internal/order/domain"
	"github.com/dmehra2102/storefront/pkg/idempotency"
	"github.com/dmehra2102/storefront/pkg/metrics"
	"github.com/dmehra2102/storefront/pkg/tracing"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	catalog *catalogapp.Service
	idem    *idempotency.Store
	tracer  trace.Tracer
}

// NewHandler serves orders and the catalogue. idem may be nil, which turns
// off Idempotency-Key checks.
func NewHandler(log *slog.Logger, service *application.Service, catalog *catalogapp.Service, idem *idempotency.Store) *Handler {
	return &Handler{
		log:     log,
		service: service,
		catalog: catalog,
		idem:    idem,
		tracer:  otel.Tracer("order-http"),
	}
}

type createOrderReq struct {
	Items  []domain.OrderItem `json:"items"`
	Total  decimal.Decimal    `json:"total"`
	UserID int64              `json:"user_id"`
}

type orderResp struct {
	ID        int64              `json:"id"`
	Items     []domain.OrderItem `json:"items"`
	Total     decimal.Decimal    `json:"total"`
	UserID    int64              `json:"user_id"`
	Status    domain.OrderStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

func toResp(o domain.Order) orderResp {
	return orderResp{ID: o.ID, Items: o.Items, Total: o.Total, UserID: o.UserID, Status: o.Status, CreatedAt: o.CreatedAt}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Group(func(r chi.Router) {
		if h.idem != nil {
			r.Use(idempotency.Middleware(h.log, h.idem, "orders"))
		}
		r.Post("/orders", h.createOrder)
	})
	r.Get("/orders/{id}", h.getOrder)

	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.OrdersTotal.WithLabelValues("invalid").Inc()
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	traceparent := r.Header.Get(tracing.TraceparentHeader)
	if traceparent == "" {
		traceparent = tracing.Traceparent(ctx)
	}
	headers := map[string]string{"source": "order-service"}

	o, err := h.service.CreateOrder(ctx, req.UserID, req.Items, req.Total, headers, traceparent)
	if err != nil {
		status := orderErrorStatus(err)
		metrics.OrdersTotal.WithLabelValues("rejected").Inc()
		if status >= http.StatusInternalServerError {
			h.log.Error("create order failed", "err", err)
			http.Error(w, "internal error", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	metrics.OrdersTotal.WithLabelValues(string(o.Status)).Inc()
	h.log.Info("order created", "order_id", o.ID, "user_id", o.UserID, "total", o.Total.StringFixed(2))
	writeJSON(w, http.StatusCreated, toResp(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}
	o, err := h.service.GetOrder(r.Context(), id)
	if errors.Is(err, application.ErrOrderNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("get order failed", "order_id", id, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toResp(o))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.log.Error("list products failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	p, err := h.catalog.Get(r.Context(), id)
	if errors.Is(err, catalogapp.ErrProductNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("get product failed", "product_id", id, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, application.ErrEmptyOrder),
		errors.Is(err, application.ErrInvalidQuantity),
		errors.Is(err, application.ErrUnknownProduct),
		errors.Is(err, application.ErrTotalMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, application.ErrStockUnavailable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
