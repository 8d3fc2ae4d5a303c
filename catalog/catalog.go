// Package catalog consumes the products resource. Schemas here mirror the
// backend contract; the client treats them as externally defined.
package catalog

import (
	"context"
	"net/url"

	"github.com/agrilink/agrilink-go/internal/utils"
	"github.com/agrilink/agrilink-go/transport"
)

const productsPath = "products/"

// Product is a marketplace listing as returned by the backend.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit,omitempty"`
	Quantity int     `json:"quantity,omitempty"`
	SellerID string  `json:"seller_id,omitempty"`
}

// ListOptions filters a product listing. Nil fields are omitted.
type ListOptions struct {
	Category *string
	Search   *string
}

type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// List fetches products matching opts.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	query := url.Values{}
	if opts.Category != nil {
		query.Set("category", utils.Value(opts.Category))
	}
	if opts.Search != nil {
		query.Set("search", utils.Value(opts.Search))
	}

	path := productsPath
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var products []Product
	if err := s.client.Get(ctx, path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get fetches a single product by ID.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := s.client.Get(ctx, productsPath+id+"/", &product); err != nil {
		return nil, err
	}
	return &product, nil
}
