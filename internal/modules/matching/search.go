// README: Passenger-facing availability search over the active pool.
package matching

import (
	"mashwar/internal/modules/geo"
	"mashwar/internal/modules/posting"
	"mashwar/internal/modules/pricing"
	"mashwar/internal/modules/route"
	"mashwar/internal/types"
)

// SearchResult is a posting whose route covers the searcher's trip, with the
// fare the searcher would actually pay.
type SearchResult struct {
	Posting *posting.Posting
	// IsPartialMatch is false when the searcher's endpoints coincide with
	// the posting's own endpoints (within the search radius); the posted
	// price then applies unmodified.
	IsPartialMatch bool
	Price          float64
}

// SearchAvailable scans the pool for postings whose route passes within
// radiusKm of both the searcher's start and end, in travel order, and
// prices each hit. Postings with unusable routes are skipped.
func SearchAvailable(pool []*posting.Posting, start, end types.Point, radiusKm float64, calc pricing.Calculator) []SearchResult {
	var out []SearchResult
	for _, p := range pool {
		if !p.Matchable() {
			continue
		}
		path, err := route.DecodePath(p.Polyline)
		if err != nil {
			continue
		}
		pickup := path.ClosestPoint(start)
		if pickup.DistanceKm > radiusKm {
			continue
		}
		dropoff := path.ClosestPoint(end)
		if dropoff.DistanceKm > radiusKm {
			continue
		}
		if pickup.Fraction >= dropoff.Fraction {
			continue
		}

		direct := geo.HaversineKm(p.Origin, start) < radiusKm &&
			geo.HaversineKm(p.Destination, end) < radiusKm
		price := p.Price
		if !direct {
			price = calc.PartialPrice(p.Price, path.LengthKm(), geo.HaversineKm(start, end))
		}
		out = append(out, SearchResult{Posting: p, IsPartialMatch: !direct, Price: price})
	}
	return out
}
