// README: Candidate filter: geometric and temporal compatibility tests over
// an in-memory posting pool.
package matching

import (
	"mashwar/internal/modules/geo"
	"mashwar/internal/modules/posting"
	"mashwar/internal/modules/route"
)

// FindCandidates returns every posting in pool that plausibly shares p's
// route. Pure function over in-memory inputs.
//
// A candidate survives when:
//   - it is not p itself and not owned by p's owner,
//   - it is the opposite kind, UPCOMING, and carries a route,
//   - its scheduled time falls within the configured window of p's,
//   - both its origin and destination project within RadiusKm of p's route,
//   - travelling p's route start to end passes the candidate's pickup
//     strictly before its dropoff.
//
// All survivors are returned unranked; selection is left to the users. An
// error is returned only for p's own route (malformed or degenerate), which
// excludes p from matching entirely. A candidate whose own route fails to
// decode is skipped, not fatal.
func FindCandidates(p *posting.Posting, pool []*posting.Posting, cfg Config) ([]Candidate, error) {
	if p.Polyline == "" {
		return nil, nil
	}
	path, err := route.DecodePath(p.Polyline)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, c := range pool {
		if c.ID == p.ID || c.OwnerID == p.OwnerID {
			continue
		}
		if c.Kind == p.Kind || c.Status != posting.StatusUpcoming || c.Polyline == "" {
			continue
		}
		if cfg.TimeWindow > 0 {
			dt := c.Time.Sub(p.Time)
			if dt < 0 {
				dt = -dt
			}
			if dt > cfg.TimeWindow {
				continue
			}
		}

		pickup := path.ClosestPoint(c.Origin)
		if pickup.DistanceKm > cfg.RadiusKm {
			continue
		}
		dropoff := path.ClosestPoint(c.Destination)
		if dropoff.DistanceKm > cfg.RadiusKm {
			continue
		}
		// Directional order: pickup must come strictly before dropoff along
		// p's route, otherwise the candidate travels the other way.
		if pickup.Fraction >= dropoff.Fraction {
			continue
		}

		ride, request := p, c
		if p.Kind == posting.KindRequest {
			ride, request = c, p
		}
		// Reuse the probed path when p is the ride; otherwise the ride is
		// the candidate and its own route must be decoded for its length.
		ridePath := path
		if ride != p {
			ridePath, err = route.DecodePath(ride.Polyline)
			if err != nil {
				continue
			}
		}
		passengerKm := geo.HaversineKm(request.Origin, request.Destination)
		price := cfg.Pricing.PartialPrice(ride.Price, ridePath.LengthKm(), passengerKm)
		out = append(out, Candidate{
			Ride:            ride,
			Request:         request,
			PickupFraction:  pickup.Fraction,
			DropoffFraction: dropoff.Fraction,
			PartialPrice:    price,
		})
	}
	return out, nil
}
