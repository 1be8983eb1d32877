package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"modena-payment-service/internal/domain/ports/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo manages shopper carts in Redis, keyed by store cart session.
type CartRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewCartRepo(client RedisClient, ttl time.Duration) *CartRepo {
	return &CartRepo{client: client, ttl: ttl}
}

func (r *CartRepo) itemsKey(session string) string {
	return fmt.Sprintf("cart:items:%s", session)
}

func (r *CartRepo) Empty(ctx context.Context, session string) error {
	return r.client.Del(ctx, r.itemsKey(session))
}

func (r *CartRepo) Add(ctx context.Context, session string, item repository.CartItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	key := r.itemsKey(session)
	if err := r.client.RPush(ctx, key, data); err != nil {
		return err
	}
	return r.client.Expire(ctx, key, r.ttl)
}

func (r *CartRepo) Items(ctx context.Context, session string) ([]repository.CartItem, error) {
	raw, err := r.client.LRange(ctx, r.itemsKey(session), 0, -1)
	if err != nil {
		return nil, err
	}
	items := make([]repository.CartItem, 0, len(raw))
	for _, entry := range raw {
		var item repository.CartItem
		if err := json.Unmarshal([]byte(entry), &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
