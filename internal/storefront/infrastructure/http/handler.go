package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	cartapp "github.com/dmehra2102/storefront/internal/cart/application"
	cart "github.com/dmehra2102/storefront/internal/cart/domain"
	catalogapp "github.com/dmehra2102/storefront/internal/catalog/application"
	checkoutapp "github.com/dmehra2102/storefront/internal/checkout/application"
	checkout "github.com/dmehra2102/storefront/internal/checkout/domain"
	"github.com/dmehra2102/storefront/internal/storefront/application"
)

const SessionHeader = "X-Session-ID"

type Handler struct {
	log      *slog.Logger
	products application.ProductSource
	sessions *application.Registry
	tracer   trace.Tracer
}

func NewHandler(log *slog.Logger, products application.ProductSource, sessions *application.Registry) *Handler {
	return &Handler{
		log:      log,
		products: products,
		sessions: sessions,
		tracer:   otel.Tracer("storefront-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addItem)
		r.Put("/items/{id}", h.updateItem)
		r.Delete("/items/{id}", h.removeItem)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/", h.getCheckout)
		r.Put("/fields/{name}", h.setField)
		r.Post("/", h.submit)
	})
	return r
}

// session resolves the caller's session, issuing a new id when the header
// is missing. The id is always echoed back.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *application.Session {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(SessionHeader, id)
	return h.sessions.Get(r.Context(), id)
}

// knownSession is session for routes that cannot change an empty cart: a
// caller without an id gets one issued but nothing is registered, and the
// result is nil.
func (h *Handler) knownSession(w http.ResponseWriter, r *http.Request) *application.Session {
	if r.Header.Get(SessionHeader) == "" {
		w.Header().Set(SessionHeader, uuid.NewString())
		return nil
	}
	return h.session(w, r)
}

type lineView struct {
	cart.LineItem
	Subtotal string `json:"subtotal"`
}

type cartView struct {
	Items      []lineView `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice string     `json:"total_price"`
}

type mutationView struct {
	Outcome *cart.Outcome `json:"outcome,omitempty"`
	Cart    cartView      `json:"cart"`
}

func viewCart(st cart.State) cartView {
	v := cartView{
		Items:      make([]lineView, 0, len(st.Items)),
		TotalItems: st.TotalItems(),
		TotalPrice: cart.FormatPrice(st.TotalPrice()),
	}
	for _, li := range st.Items {
		v.Items = append(v.Items, lineView{LineItem: li, Subtotal: cart.FormatPrice(li.Subtotal())})
	}
	return v
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.FetchProducts(r.Context())
	if err != nil {
		h.log.Error("fetch products failed", "err", err)
		http.Error(w, "catalogue unavailable", http.StatusBadGateway)
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
	p, err := h.products.FetchProductByID(r.Context(), id)
	if errors.Is(err, catalogapp.ErrProductNotFound) {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("fetch product failed", "product_id", id, "err", err)
		http.Error(w, "catalogue unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	s := h.knownSession(w, r)
	if s == nil {
		writeJSON(w, http.StatusOK, viewCart(cart.State{}))
		return
	}
	writeJSON(w, http.StatusOK, viewCart(s.Cart.Snapshot()))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	s := h.knownSession(w, r)
	if s == nil {
		writeJSON(w, http.StatusOK, viewCart(cart.State{}))
		return
	}
	s.Cart.ClearCart(r.Context())
	writeJSON(w, http.StatusOK, viewCart(s.Cart.Snapshot()))
}

type addItemReq struct {
	ProductID int64           `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
}

type quantityReq struct {
	Quantity json.RawMessage `json:"quantity"`
}

func absent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// quantity accepts a JSON number or string. A missing quantity means def;
// anything unparseable reports ok=false and the mutation is skipped.
func quantity(raw json.RawMessage, def int) (int, bool) {
	if absent(raw) {
		return def, true
	}
	raw = bytes.TrimSpace(raw)
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
	} else {
		s = string(raw)
	}
	return cartapp.ParseQuantity(s)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddItem")
	defer span.End()
	s := h.session(w, r)

	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	qty, ok := quantity(req.Quantity, 1)
	if !ok {
		writeJSON(w, http.StatusOK, mutationView{Cart: viewCart(s.Cart.Snapshot())})
		return
	}

	p, err := h.products.FetchProductByID(ctx, req.ProductID)
	if errors.Is(err, catalogapp.ErrProductNotFound) {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("fetch product failed", "product_id", req.ProductID, "err", err)
		http.Error(w, "catalogue unavailable", http.StatusBadGateway)
		return
	}

	out := s.Cart.AddItem(ctx, p, qty)
	writeJSON(w, http.StatusOK, mutationView{Outcome: &out, Cart: viewCart(s.Cart.Snapshot())})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	s := h.knownSession(w, r)
	if s == nil {
		writeJSON(w, http.StatusOK, mutationView{Cart: viewCart(cart.State{})})
		return
	}
	var req quantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	// a missing or null quantity is not a request to remove the line
	qty, ok := quantity(req.Quantity, 0)
	if !ok || absent(req.Quantity) {
		writeJSON(w, http.StatusOK, mutationView{Cart: viewCart(s.Cart.Snapshot())})
		return
	}

	out := s.Cart.UpdateQuantity(r.Context(), id, qty)
	writeJSON(w, http.StatusOK, mutationView{Outcome: &out, Cart: viewCart(s.Cart.Snapshot())})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	s := h.knownSession(w, r)
	if s == nil {
		writeJSON(w, http.StatusOK, viewCart(cart.State{}))
		return
	}
	s.Cart.RemoveItem(r.Context(), id)
	writeJSON(w, http.StatusOK, viewCart(s.Cart.Snapshot()))
}

type fieldError struct {
	Code    checkout.ErrorCode `json:"code"`
	Message string             `json:"message"`
}

type checkoutView struct {
	Fields     map[checkout.Field]string     `json:"fields"`
	Errors     map[checkout.Field]fieldError `json:"errors"`
	Submission checkout.Submission           `json:"submission"`
	Notice     string                        `json:"notice,omitempty"`
	Total      string                        `json:"total"`
}

func viewCheckout(p *checkoutapp.Pipeline, total decimal.Decimal) checkoutView {
	v := checkoutView{
		Fields:     p.Fields(),
		Errors:     map[checkout.Field]fieldError{},
		Submission: p.Status(),
		Total:      cart.FormatPrice(total),
	}
	for f, code := range p.Errors() {
		v.Errors[f] = fieldError{Code: code, Message: code.Message()}
	}
	if v.Submission.Status == checkout.StatusFailed {
		v.Notice = checkout.FailureNotice
	}
	return v
}

func (h *Handler) getCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.knownSession(w, r)
	if s == nil {
		writeJSON(w, http.StatusOK, blankCheckout())
		return
	}
	writeJSON(w, http.StatusOK, viewCheckout(s.Checkout(), s.Cart.TotalPrice()))
}

func blankCheckout() checkoutView {
	v := checkoutView{
		Fields:     make(map[checkout.Field]string, len(checkout.Fields)),
		Errors:     map[checkout.Field]fieldError{},
		Submission: checkout.Submission{Status: checkout.StatusIdle},
		Total:      cart.FormatPrice(decimal.Zero),
	}
	for _, f := range checkout.Fields {
		v.Fields[f] = ""
	}
	return v
}

type fieldReq struct {
	Value string `json:"value"`
}

func (h *Handler) setField(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	name, ok := checkout.ParseField(chi.URLParam(r, "name"))
	if !ok {
		http.Error(w, "unknown field", http.StatusNotFound)
		return
	}
	var req fieldReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	p := s.ActiveCheckout()
	if err := p.SetField(name, req.Value); err != nil {
		if errors.Is(err, checkoutapp.ErrFormLocked) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, viewCheckout(p, s.Cart.TotalPrice()))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitCheckout")
	defer span.End()
	s := h.session(w, r)

	p := s.ActiveCheckout()
	total := s.Cart.TotalPrice()
	_, err := p.Submit(ctx)

	var verr *checkout.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, viewCheckout(p, total))
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, viewCheckout(p, s.Cart.TotalPrice()))
	case errors.Is(err, checkoutapp.ErrSubmissionInFlight), errors.Is(err, checkoutapp.ErrEmptyCart):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, checkoutapp.ErrSubmissionFailed):
		writeJSON(w, http.StatusBadGateway, viewCheckout(p, s.Cart.TotalPrice()))
	default:
		h.log.Error("checkout failed", "session", s.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
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
