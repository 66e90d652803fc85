package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kepacart/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "kepa:registry:"

// RedisRegistry stores registered products in Redis so several instances share them.
// Each product is a JSON string under <prefix>product:<barcode>; a sorted set
// scored by registration time keeps the listing order.
type RedisRegistry struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRegistry connects to the Redis instance at url (redis://host:port/db)
func NewRedisRegistry(ctx context.Context, url string) (*RedisRegistry, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: failed to connect to redis: %v", domain.ErrRegistryUnavailable, err)
	}

	return NewRedisRegistryWithClient(client, ""), nil
}

// NewRedisRegistryWithClient creates a registry on an existing client
func NewRedisRegistryWithClient(client *redis.Client, keyPrefix string) *RedisRegistry {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisRegistry{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (r *RedisRegistry) productKey(barcode string) string {
	return r.keyPrefix + "product:" + barcode
}

func (r *RedisRegistry) indexKey() string {
	return r.keyPrefix + "index"
}

// Get retrieves a product by barcode
func (r *RedisRegistry) Get(ctx context.Context, barcode string) (*domain.RegisteredProduct, error) {
	data, err := r.client.Get(ctx, r.productKey(barcode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", domain.ErrRegistryUnavailable, barcode, err)
	}
	return decodeProduct(data)
}

// InsertIfAbsent stores product with SETNX so concurrent registrations of one barcode keep the first
func (r *RedisRegistry) InsertIfAbsent(ctx context.Context, product *domain.RegisteredProduct) (*domain.RegisteredProduct, bool, error) {
	if product == nil {
		return nil, false, domain.ErrInvalidRequest
	}

	data, err := json.Marshal(product)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode product: %w", err)
	}

	key := r.productKey(product.Barcode)
	set, err := r.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return nil, false, fmt.Errorf("%w: setnx %s: %v", domain.ErrRegistryUnavailable, product.Barcode, err)
	}
	if !set {
		existing, err := r.Get(ctx, product.Barcode)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	member := redis.Z{Score: float64(product.RegisteredAt.UnixMilli()), Member: product.Barcode}
	if err := r.client.ZAdd(ctx, r.indexKey(), member).Err(); err != nil {
		// Roll back so the barcode can be registered again
		r.client.Del(context.WithoutCancel(ctx), key)
		return nil, false, fmt.Errorf("%w: index %s: %v", domain.ErrRegistryUnavailable, product.Barcode, err)
	}

	stored := *product
	return &stored, true, nil
}

// List returns products ordered by registration time, newest first
func (r *RedisRegistry) List(ctx context.Context, offset, limit int) ([]domain.RegisteredProduct, int, error) {
	total, err := r.client.ZCard(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: count: %v", domain.ErrRegistryUnavailable, err)
	}
	if offset < 0 {
		offset = 0
	}
	if int64(offset) >= total || limit <= 0 {
		return []domain.RegisteredProduct{}, int(total), nil
	}

	barcodes, err := r.client.ZRevRange(ctx, r.indexKey(), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: range: %v", domain.ErrRegistryUnavailable, err)
	}
	if len(barcodes) == 0 {
		return []domain.RegisteredProduct{}, int(total), nil
	}

	keys := make([]string, len(barcodes))
	for i, b := range barcodes {
		keys[i] = r.productKey(b)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: mget: %v", domain.ErrRegistryUnavailable, err)
	}

	products := make([]domain.RegisteredProduct, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue // index entry without a product
		}
		p, err := decodeProduct([]byte(s))
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, int(total), nil
}

// Close closes the Redis client
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}

func decodeProduct(data []byte) (*domain.RegisteredProduct, error) {
	var p domain.RegisteredProduct
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	return &p, nil
}

var _ domain.ProductRegistry = (*RedisRegistry)(nil)
