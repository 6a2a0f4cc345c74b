package matching

import (
	"errors"
	"testing"
	"time"

	"mashwar/internal/modules/posting"
	"mashwar/internal/modules/pricing"
	"mashwar/internal/modules/route"
	"mashwar/internal/types"
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		RadiusKm:   3.0,
		TimeWindow: 24 * time.Hour,
		Pricing:    pricing.NewCalculator(pricing.DefaultRoundTo, pricing.DefaultMinFare),
	}
}

// eastboundRide travels along latitude 30 from lng 31.0 to 31.2.
func eastboundRide() *posting.Posting {
	return &posting.Posting{
		ID:      types.ID("ride-1"),
		Kind:    posting.KindRide,
		OwnerID: types.ID("driver-1"),
		Origin:  types.Point{Lat: 30, Lng: 31.0},
		Destination: types.Point{
			Lat: 30, Lng: 31.2,
		},
		Polyline: route.Encode([]types.Point{
			{Lat: 30, Lng: 31.0},
			{Lat: 30, Lng: 31.1},
			{Lat: 30, Lng: 31.2},
		}),
		Time:   baseTime,
		Seats:  3,
		Price:  100,
		Status: posting.StatusUpcoming,
	}
}

// requestAlong is a passenger request whose endpoints sit just off the
// eastbound route, travelling the same direction.
func requestAlong(id, owner string) *posting.Posting {
	return &posting.Posting{
		ID:          types.ID(id),
		Kind:        posting.KindRequest,
		OwnerID:     types.ID(owner),
		Origin:      types.Point{Lat: 30.005, Lng: 31.055},
		Destination: types.Point{Lat: 30.005, Lng: 31.14},
		Polyline: route.Encode([]types.Point{
			{Lat: 30.005, Lng: 31.055},
			{Lat: 30.005, Lng: 31.14},
		}),
		Time:   baseTime.Add(2 * time.Hour),
		Seats:  1,
		Price:  0,
		Status: posting.StatusUpcoming,
	}
}

func TestFindCandidatesAccepts(t *testing.T) {
	ride := eastboundRide()
	req := requestAlong("req-1", "rider-1")

	got, err := FindCandidates(ride, []*posting.Posting{req}, testConfig())
	if err != nil {
		t.Fatalf("FindCandidates() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FindCandidates() returned %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.Ride != ride || c.Request != req {
		t.Errorf("candidate roles wrong: ride=%v request=%v", c.Ride.ID, c.Request.ID)
	}
	if c.PickupFraction >= c.DropoffFraction {
		t.Errorf("pickup fraction %v not before dropoff %v", c.PickupFraction, c.DropoffFraction)
	}
	// Passenger's ~8.2km direct trip over a ~19.3km route at full price 100:
	// raw ~42.5, rounded up to the next multiple of 5.
	if c.PartialPrice != 45 {
		t.Errorf("PartialPrice = %v, want 45", c.PartialPrice)
	}
}

func TestFindCandidatesRejects(t *testing.T) {
	ride := eastboundRide()

	tests := []struct {
		name   string
		mutate func(*posting.Posting)
	}{
		{"same id", func(c *posting.Posting) { c.ID = ride.ID }},
		{"same owner", func(c *posting.Posting) { c.OwnerID = ride.OwnerID }},
		{"same kind", func(c *posting.Posting) { c.Kind = posting.KindRide }},
		{"not upcoming", func(c *posting.Posting) { c.Status = posting.StatusCancelled }},
		{"no route", func(c *posting.Posting) { c.Polyline = "" }},
		{"outside time window", func(c *posting.Posting) { c.Time = baseTime.Add(25 * time.Hour) }},
		{"before time window", func(c *posting.Posting) { c.Time = baseTime.Add(-25 * time.Hour) }},
		{"origin far off route", func(c *posting.Posting) { c.Origin = types.Point{Lat: 30.05, Lng: 31.05} }},
		{"destination far off route", func(c *posting.Posting) { c.Destination = types.Point{Lat: 29.95, Lng: 31.15} }},
		{"travelling the other way", func(c *posting.Posting) {
			c.Origin, c.Destination = c.Destination, c.Origin
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestAlong("req-1", "rider-1")
			tt.mutate(req)
			got, err := FindCandidates(ride, []*posting.Posting{req}, testConfig())
			if err != nil {
				t.Fatalf("FindCandidates() error = %v", err)
			}
			if len(got) != 0 {
				t.Errorf("FindCandidates() returned %d candidates, want 0", len(got))
			}
		})
	}
}

func TestFindCandidatesRadiusBoundary(t *testing.T) {
	// 3km at ~111.195 km per degree of latitude is 0.026980 degrees.
	ride := eastboundRide()
	cfg := testConfig()

	within := requestAlong("req-near", "rider-1")
	within.Origin = types.Point{Lat: 30.02697, Lng: 31.05} // ~2.999 km off the route
	got, err := FindCandidates(ride, []*posting.Posting{within}, cfg)
	if err != nil {
		t.Fatalf("FindCandidates() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("origin just inside radius: got %d candidates, want 1", len(got))
	}

	beyond := requestAlong("req-far", "rider-1")
	beyond.Origin = types.Point{Lat: 30.02700, Lng: 31.05} // ~3.002 km off the route
	got, err = FindCandidates(ride, []*posting.Posting{beyond}, cfg)
	if err != nil {
		t.Fatalf("FindCandidates() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("origin just outside radius: got %d candidates, want 0", len(got))
	}
}

func TestFindCandidatesRequestProbe(t *testing.T) {
	// Probing from the request side must resolve roles and price off the ride.
	ride := eastboundRide()
	req := requestAlong("req-1", "rider-1")

	got, err := FindCandidates(req, []*posting.Posting{ride}, testConfig())
	if err != nil {
		t.Fatalf("FindCandidates() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FindCandidates() returned %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.Ride != ride || c.Request != req {
		t.Errorf("candidate roles wrong: ride=%v request=%v", c.Ride.ID, c.Request.ID)
	}
	if c.PartialPrice != 45 {
		t.Errorf("PartialPrice = %v, want 45", c.PartialPrice)
	}
}

func TestFindCandidatesSkipsUndecodableCandidateRoute(t *testing.T) {
	req := requestAlong("req-1", "rider-1")
	ride := eastboundRide()
	ride.Polyline = "_p~iF" // truncated

	got, err := FindCandidates(req, []*posting.Posting{ride}, testConfig())
	if err != nil {
		t.Fatalf("FindCandidates() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("candidate with broken route: got %d candidates, want 0", len(got))
	}
}

func TestFindCandidatesProbeWithoutRoute(t *testing.T) {
	ride := eastboundRide()
	ride.Polyline = ""
	got, err := FindCandidates(ride, []*posting.Posting{requestAlong("req-1", "rider-1")}, testConfig())
	if err != nil {
		t.Fatalf("FindCandidates() error = %v", err)
	}
	if got != nil {
		t.Errorf("probe without route: got %v, want nil", got)
	}
}

func TestFindCandidatesProbeRouteMalformed(t *testing.T) {
	ride := eastboundRide()
	ride.Polyline = "_p~iF"
	_, err := FindCandidates(ride, []*posting.Posting{requestAlong("req-1", "rider-1")}, testConfig())
	if !errors.Is(err, route.ErrMalformedPolyline) {
		t.Errorf("FindCandidates() error = %v, want ErrMalformedPolyline", err)
	}
}

func TestFindCandidatesCairoScenario(t *testing.T) {
	ride := &posting.Posting{
		ID:          types.ID("ride-cai"),
		Kind:        posting.KindRide,
		OwnerID:     types.ID("driver-cai"),
		Origin:      types.Point{Lat: 30.05, Lng: 31.35},
		Destination: types.Point{Lat: 30.03, Lng: 31.20},
		Polyline: route.Encode([]types.Point{
			{Lat: 30.05, Lng: 31.35},
			{Lat: 30.03, Lng: 31.20},
		}),
		Time:   baseTime,
		Seats:  2,
		Price:  55,
		Status: posting.StatusUpcoming,
	}
	req := &posting.Posting{
		ID:          types.ID("req-cai"),
		Kind:        posting.KindRequest,
		OwnerID:     types.ID("rider-cai"),
		Origin:      types.Point{Lat: 30.045, Lng: 31.34},
		Destination: types.Point{Lat: 30.035, Lng: 31.25},
		Polyline: route.Encode([]types.Point{
			{Lat: 30.045, Lng: 31.34},
			{Lat: 30.035, Lng: 31.25},
		}),
		Time:   baseTime,
		Seats:  1,
		Status: posting.StatusUpcoming,
	}
	cfg := testConfig()
	cfg.RadiusKm = 2.0

	got, err := FindCandidates(ride, []*posting.Posting{req}, cfg)
	if err != nil {
		t.Fatalf("FindCandidates() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FindCandidates() returned %d candidates, want 1", len(got))
	}
	// Direct passenger distance ~8.7km over a ~14.6km route at price 55:
	// raw ~32.9, rounded up to the next multiple of 5.
	if got[0].PartialPrice != 35 {
		t.Errorf("PartialPrice = %v, want 35", got[0].PartialPrice)
	}

	// Same trip with endpoints swapped travels against the route.
	req.Origin, req.Destination = req.Destination, req.Origin
	got, err = FindCandidates(ride, []*posting.Posting{req}, cfg)
	if err != nil {
		t.Fatalf("FindCandidates() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("reversed trip: got %d candidates, want 0", len(got))
	}
}
