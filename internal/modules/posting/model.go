// README: Posting aggregate (rides and ride-requests) and status definitions.
package posting

import (
	"time"

	"mashwar/internal/types"
)

// Kind disambiguates the two posting flavors stored in the same table.
type Kind string

const (
	KindRide    Kind = "RIDE"    // driver-offered seat(s) along a route
	KindRequest Kind = "REQUEST" // passenger looking for a lift
)

// Opposite returns the kind a posting is matched against.
func (k Kind) Opposite() Kind {
	if k == KindRide {
		return KindRequest
	}
	return KindRide
}

type Status string

const (
	StatusUpcoming   Status = "UPCOMING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Posting is a ride or a ride-request. Price always covers the full
// origin→destination span; partial prices are derived, never stored.
type Posting struct {
	ID      types.ID
	Kind    Kind
	OwnerID types.ID

	Origin      types.Point
	Destination types.Point
	// Polyline is the encoded route path. Empty means the posting is not
	// eligible for geospatial matching.
	Polyline string

	Time   time.Time
	Seats  int
	Price  float64
	Status Status

	FromCity   string
	FromSuburb string
	ToCity     string
	ToSuburb   string
	// Normalized place names, populated at creation time for the
	// text-based fallback search.
	FromCityNorm   string
	FromSuburbNorm string
	ToCityNorm     string
	ToSuburbNorm   string

	CreatedAt time.Time
}

// Matchable reports whether the posting is eligible for geospatial matching.
func (p *Posting) Matchable() bool {
	return p.Status == StatusUpcoming && p.Polyline != ""
}

// AllowedTransitions represents the posting lifecycle as code. Booking,
// start, completion and cancellation all funnel through here.
var AllowedTransitions = map[Status][]Status{
	StatusUpcoming:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
