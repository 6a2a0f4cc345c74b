// README: Redis GEO index over posting origins, per kind.
package posting

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mashwar/internal/types"
)

const geoKeyPrefix = "postings:origins:%s"

// GeoIndex keeps posting origins in a per-kind Redis GEO set. It backs the
// map "nearby" lookup; the matching pool query stays on the relational
// store because candidates must be near the route, not near a single point.
type GeoIndex struct {
	redis *redis.Client
}

func NewGeoIndex(redis *redis.Client) *GeoIndex {
	return &GeoIndex{redis: redis}
}

func (g *GeoIndex) Add(ctx context.Context, p *Posting) error {
	return g.redis.GeoAdd(ctx, geoKey(p.Kind), &redis.GeoLocation{
		Name:      string(p.ID),
		Longitude: p.Origin.Lng,
		Latitude:  p.Origin.Lat,
	}).Err()
}

func (g *GeoIndex) Remove(ctx context.Context, kind Kind, id types.ID) error {
	return g.redis.ZRem(ctx, geoKey(kind), string(id)).Err()
}

// Nearby returns ids of postings whose origin lies within radiusKm of p,
// closest first.
func (g *GeoIndex) Nearby(ctx context.Context, kind Kind, p types.Point, radiusKm float64) ([]types.ID, error) {
	results, err := g.redis.GeoSearch(ctx, geoKey(kind), &redis.GeoSearchQuery{
		Longitude:  p.Lng,
		Latitude:   p.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(results))
	for i, r := range results {
		ids[i] = types.ID(r)
	}
	return ids, nil
}

func geoKey(kind Kind) string {
	return fmt.Sprintf(geoKeyPrefix, string(kind))
}
