package repository

import "context"

// CartItem identifies one product entry in a shopper's cart.
type CartItem struct {
	ProductID   int64 `json:"product_id"`
	Quantity    int   `json:"quantity"`
	VariationID int64 `json:"variation_id"`
}

// CartRepository is the store Cart port, keyed by the cart session recorded
// on the order.
type CartRepository interface {
	Empty(ctx context.Context, session string) error
	Add(ctx context.Context, session string, item CartItem) error
	Items(ctx context.Context, session string) ([]CartItem, error)
}
