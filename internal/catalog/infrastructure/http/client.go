package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmehra2102/storefront/internal/catalog/application"
	"github.com/dmehra2102/storefront/internal/catalog/domain"
	"github.com/dmehra2102/storefront/pkg/breaker"
)

// Client reads the catalogue from the order service.
type Client struct {
	log     *slog.Logger
	http    *resty.Client
	breaker *breaker.Breaker
}

func NewClient(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:     log,
		http:    resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		breaker: breaker.New(log, "catalog", "storefront"),
	}
}

func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		var products []domain.Product
		resp, err := c.http.R().SetContext(ctx).SetResult(&products).Get("/products")
		if err != nil {
			return nil, fmt.Errorf("fetch products: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch products: status %d", resp.StatusCode())
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.Product), nil
}

// FetchProductByID returns application.ErrProductNotFound on 404.
func (c *Client) FetchProductByID(ctx context.Context, id int64) (domain.Product, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		var p domain.Product
		resp, err := c.http.R().
			SetContext(ctx).
			SetPathParam("id", strconv.FormatInt(id, 10)).
			SetResult(&p).
			Get("/products/{id}")
		if err != nil {
			return nil, fmt.Errorf("fetch product %d: %w", id, err)
		}
		if resp.StatusCode() == http.StatusNotFound {
			return nil, fmt.Errorf("%w (%w)", application.ErrProductNotFound, breaker.ErrClient)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch product %d: status %d", id, resp.StatusCode())
		}
		return p, nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return out.(domain.Product), nil
}
