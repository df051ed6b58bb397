package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/dmehra2102/storefront/internal/catalog/application"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
	checkout "github.com/dmehra2102/storefront/internal/checkout/domain"
	"github.com/dmehra2102/storefront/internal/storefront/application"
	"github.com/dmehra2102/storefront/pkg/logging"
)

type seedSource struct{}

func (seedSource) FetchProducts(ctx context.Context) ([]catalog.Product, error) {
	return catalogapp.SeedProducts(), nil
}

func (seedSource) FetchProductByID(ctx context.Context, id int64) (catalog.Product, error) {
	for _, p := range catalogapp.SeedProducts() {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, catalogapp.ErrProductNotFound
}

type stubOrders struct {
	err   error
	calls []checkout.OrderRequest
}

func (s *stubOrders) CreateOrder(ctx context.Context, req checkout.OrderRequest) (checkout.OrderConfirmation, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return checkout.OrderConfirmation{}, s.err
	}
	return checkout.OrderConfirmation{ID: 1001, Items: req.Items, Total: req.Total, UserID: req.UserID, Status: "confirmed"}, nil
}

type client struct {
	t        *testing.T
	url      string
	session  string
	sessions *application.Registry
}

func newClient(t *testing.T, orders *stubOrders) *client {
	t.Helper()
	reg := application.NewRegistry(logging.Discard(), nil, orders, 1)
	srv := httptest.NewServer(NewHandler(logging.Discard(), seedSource{}, reg).Routes())
	t.Cleanup(srv.Close)
	return &client{t: t, url: srv.URL, sessions: reg}
}

func (c *client) do(method, path, body string, out any) int {
	c.t.Helper()
	req, err := http.NewRequest(method, c.url+path, strings.NewReader(body))
	require.NoError(c.t, err)
	if c.session != "" {
		req.Header.Set(SessionHeader, c.session)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if c.session == "" {
		c.session = resp.Header.Get(SessionHeader)
	}
	if out != nil && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func fillForm(c *client) {
	form := map[checkout.Field]string{
		checkout.FirstName: "Ada", checkout.LastName: "Lovelace", checkout.Email: "ada@example.com",
		checkout.Address: "1 Engine Way", checkout.City: "London", checkout.ZipCode: "N1",
		checkout.CardName: "Ada Lovelace", checkout.CardNumber: "4242 4242 4242 4242",
		checkout.ExpiryDate: "12/30", checkout.CVV: "123",
	}
	for f, v := range form {
		body, _ := json.Marshal(fieldReq{Value: v})
		require.Equal(c.t, http.StatusOK, c.do(http.MethodPut, "/checkout/fields/"+string(f), string(body), nil))
	}
}

func TestSessionHeaderIsIssued(t *testing.T) {
	c := newClient(t, &stubOrders{})
	var v cartView
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/cart", "", &v))
	assert.NotEmpty(t, c.session)
	assert.Equal(t, "0.00", v.TotalPrice)
}

func TestReadsWithoutSessionRegisterNothing(t *testing.T) {
	c := newClient(t, &stubOrders{})

	for _, path := range []string{"/cart", "/checkout"} {
		c.session = ""
		require.Equal(t, http.StatusOK, c.do(http.MethodGet, path, "", nil), path)
		assert.NotEmpty(t, c.session, path)
	}
	c.session = ""
	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/cart", "", nil))
	assert.Zero(t, c.sessions.Len())

	var v checkoutView
	c.session = ""
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/checkout", "", &v))
	assert.Equal(t, checkout.StatusIdle, v.Submission.Status)
	assert.Len(t, v.Fields, len(checkout.Fields))
	assert.Equal(t, "0.00", v.Total)

	// the issued id becomes a real session on the first mutation
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", `{"product_id":1}`, nil))
	assert.Equal(t, 1, c.sessions.Len())
	var cv cartView
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/cart", "", &cv))
	assert.Equal(t, 1, cv.TotalItems)
}

func TestCartFlow(t *testing.T) {
	c := newClient(t, &stubOrders{})

	var m mutationView
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", `{"product_id":3,"quantity":5}`, &m))
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", `{"product_id":3,"quantity":"5"}`, &m))
	require.NotNil(t, m.Outcome)
	assert.True(t, m.Outcome.Clamped)
	assert.Equal(t, 8, m.Outcome.Quantity)

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", `{"product_id":5}`, &m))
	assert.Equal(t, 9, m.Cart.TotalItems)
	assert.Equal(t, "2024.91", m.Cart.TotalPrice)
	require.Len(t, m.Cart.Items, 2)
	assert.Equal(t, int64(3), m.Cart.Items[0].ID)
	assert.Equal(t, "1999.92", m.Cart.Items[0].Subtotal)

	// unparseable quantities leave the cart alone
	m = mutationView{}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", `{"product_id":5,"quantity":"two"}`, &m))
	assert.Nil(t, m.Outcome)
	assert.Equal(t, 9, m.Cart.TotalItems)

	for _, body := range []string{`{"quantity":null}`, `{}`, `{"quantity":"lots"}`, `{"quantity":1.5}`} {
		m = mutationView{}
		require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/cart/items/3", body, &m), body)
		assert.Nil(t, m.Outcome, body)
		assert.Equal(t, 9, m.Cart.TotalItems, body)
	}

	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/cart/items/3", `{"quantity":0}`, &m))
	assert.Equal(t, 1, m.Cart.TotalItems)

	var v cartView
	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/cart/items/5", "", &v))
	assert.Empty(t, v.Items)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/cart/items", `{"product_id":99}`, nil))
}

func TestCheckoutValidation(t *testing.T) {
	orders := &stubOrders{}
	c := newClient(t, orders)
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", `{"product_id":1,"quantity":1}`, nil))

	fillForm(c)
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/checkout/fields/email", `{"value":"nope"}`, nil))
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/checkout/fields/cardNumber", `{"value":"12345678901234"}`, nil))

	var v checkoutView
	require.Equal(t, http.StatusUnprocessableEntity, c.do(http.MethodPost, "/checkout", "", &v))
	assert.Equal(t, map[checkout.Field]fieldError{
		checkout.Email:      {Code: checkout.CodeInvalidEmail, Message: "Email is invalid"},
		checkout.CardNumber: {Code: checkout.CodeInvalidCardNumber, Message: "Card number must be 16 digits"},
	}, v.Errors)
	assert.Empty(t, orders.calls)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPut, "/checkout/fields/phone", `{"value":"1"}`, nil))
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	orders := &stubOrders{}
	c := newClient(t, orders)
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", `{"product_id":4,"quantity":2}`, nil))
	fillForm(c)

	var v checkoutView
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/checkout", "", &v))
	assert.Equal(t, checkout.StatusSucceeded, v.Submission.Status)
	assert.Equal(t, int64(1001), v.Submission.OrderID)
	assert.Equal(t, "119.98", v.Total)
	require.Len(t, orders.calls, 1)
	assert.True(t, orders.calls[0].Total.Equal(decimal.RequireFromString("119.98")))

	var cv cartView
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/cart", "", &cv))
	assert.Empty(t, cv.Items)

	// the next checkout starts with a blank form
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/checkout", "", &v))
	assert.Equal(t, checkout.StatusSucceeded, v.Submission.Status)
	require.Equal(t, http.StatusUnprocessableEntity, c.do(http.MethodPost, "/checkout", "", &v))
	assert.Equal(t, checkout.CodeRequired, v.Errors[checkout.Email].Code)
	assert.Len(t, orders.calls, 1)
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	c := newClient(t, &stubOrders{err: errors.New("order service unavailable")})
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", `{"product_id":2,"quantity":1}`, nil))
	fillForm(c)

	var v checkoutView
	require.Equal(t, http.StatusBadGateway, c.do(http.MethodPost, "/checkout", "", &v))
	assert.Equal(t, checkout.StatusFailed, v.Submission.Status)
	assert.Equal(t, "order service unavailable", v.Submission.Reason)
	assert.Equal(t, checkout.FailureNotice, v.Notice)

	var cv cartView
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/cart", "", &cv))
	assert.Equal(t, 1, cv.TotalItems)
}

func TestEmptyCartCheckout(t *testing.T) {
	orders := &stubOrders{}
	c := newClient(t, orders)
	fillForm(c)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/checkout", "", nil))
	assert.Empty(t, orders.calls)
}
