// README: Match candidates derived per matching run; never persisted.
package matching

import (
	"time"

	"mashwar/internal/modules/posting"
	"mashwar/internal/modules/pricing"
)

// Candidate pairs a RIDE with a REQUEST whose trip lies along the ride's
// route in travel order. Ephemeral: recomputed on every run, one
// notification per side, no dedup across runs.
type Candidate struct {
	Ride    *posting.Posting
	Request *posting.Posting

	// Fractional positions of the candidate's projected pickup and dropoff
	// along the probed route. Pickup is always strictly before dropoff.
	PickupFraction  float64
	DropoffFraction float64

	// PartialPrice is the pro-rated fare for the request's span of the
	// ride's route.
	PartialPrice float64
}

// Config bundles the matching policy knobs.
type Config struct {
	// RadiusKm is how far a candidate's endpoints may sit from the probed
	// route.
	RadiusKm float64
	// SearchRadiusKm is the tighter radius used by the passenger-facing
	// availability search.
	SearchRadiusKm float64
	// TimeWindow is the accepted scheduling offset between the two
	// postings. Zero disables the temporal check.
	TimeWindow time.Duration
	// QueueSize bounds the background matching work queue.
	QueueSize int
	// Pricing computes the partial fare for accepted candidates.
	Pricing pricing.Calculator
}
