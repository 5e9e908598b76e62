package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ListingCache invalidates cached listing projections in Redis. The read path
// (and cache fill) belongs to the query-facing services; this service only
// has to make sure a stale entry never survives a listing write or delete.
type ListingCache struct {
	client *redis.Client
}

func NewListingCache(addr string) (*ListingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &ListingCache{client: client}, nil
}

func (c *ListingCache) Invalidate(ctx context.Context, listingID string) error {
	return c.client.Del(ctx, "listing:"+listingID).Err()
}

func (c *ListingCache) Close() error {
	return c.client.Close()
}
