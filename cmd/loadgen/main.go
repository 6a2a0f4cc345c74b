// README: Synthetic matching load generator; builds a random posting pool
// around a city center and times candidate filtering end to end.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"mashwar/internal/modules/matching"
	"mashwar/internal/modules/posting"
	"mashwar/internal/modules/pricing"
	"mashwar/internal/modules/route"
	"mashwar/internal/types"
)

type config struct {
	PoolSize int
	Runs     int
	RadiusKm float64
	Seed     int64
}

func loadConfig() config {
	var cfg config
	flag.IntVar(&cfg.PoolSize, "pool", envOrDefaultInt("MASHWAR_LOADGEN_POOL", 2000), "postings in the synthetic pool")
	flag.IntVar(&cfg.Runs, "runs", envOrDefaultInt("MASHWAR_LOADGEN_RUNS", 100), "matching runs to execute")
	flag.Float64Var(&cfg.RadiusKm, "radius", 3.0, "match radius in km")
	flag.Int64Var(&cfg.Seed, "seed", 1, "rng seed")
	flag.Parse()
	return cfg
}

// Cairo city center; the synthetic pool spreads around it.
var center = types.Point{Lat: 30.05, Lng: 31.25}

func main() {
	cfg := loadConfig()
	rng := rand.New(rand.NewSource(cfg.Seed))

	pool := make([]*posting.Posting, cfg.PoolSize)
	for i := range pool {
		pool[i] = randomPosting(rng, posting.KindRequest, i)
	}

	matchCfg := matching.Config{
		RadiusKm:   cfg.RadiusKm,
		TimeWindow: 24 * time.Hour,
		Pricing:    pricing.NewCalculator(pricing.DefaultRoundTo, pricing.DefaultMinFare),
	}

	var totalCandidates int
	start := time.Now()
	for i := 0; i < cfg.Runs; i++ {
		probe := randomPosting(rng, posting.KindRide, cfg.PoolSize+i)
		candidates, err := matching.FindCandidates(probe, pool, matchCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "run %d: %v\n", i, err)
			os.Exit(1)
		}
		totalCandidates += len(candidates)
	}
	elapsed := time.Since(start)

	fmt.Printf("pool=%d runs=%d radius=%.1fkm\n", cfg.PoolSize, cfg.Runs, cfg.RadiusKm)
	fmt.Printf("total=%v per-run=%v candidates/run=%.1f\n",
		elapsed, elapsed/time.Duration(cfg.Runs),
		float64(totalCandidates)/float64(cfg.Runs))
}

// randomPosting builds a posting with a straight 3-point route between two
// random points around the center.
func randomPosting(rng *rand.Rand, kind posting.Kind, n int) *posting.Posting {
	origin := jitter(rng, center, 0.15)
	dest := jitter(rng, center, 0.15)
	mid := types.Point{Lat: (origin.Lat + dest.Lat) / 2, Lng: (origin.Lng + dest.Lng) / 2}
	return &posting.Posting{
		ID:          types.ID(fmt.Sprintf("p%06d", n)),
		Kind:        kind,
		OwnerID:     types.ID(fmt.Sprintf("u%06d", n)),
		Origin:      origin,
		Destination: dest,
		Polyline:    route.Encode([]types.Point{origin, mid, dest}),
		Time:        time.Now().Add(time.Duration(rng.Intn(12)) * time.Hour),
		Seats:       1 + rng.Intn(3),
		Price:       float64(20 + rng.Intn(200)),
		Status:      posting.StatusUpcoming,
	}
}

func jitter(rng *rand.Rand, p types.Point, spread float64) types.Point {
	return types.Point{
		Lat: p.Lat + (rng.Float64()-0.5)*spread,
		Lng: p.Lng + (rng.Float64()-0.5)*spread,
	}
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
