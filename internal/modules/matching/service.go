// README: Matching service: background worker that pairs new postings with
// the active pool and notifies both sides.
package matching

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"mashwar/internal/modules/notify"
	"mashwar/internal/modules/posting"
	"mashwar/internal/modules/route"
	"mashwar/internal/types"
)

const kmPerDegreeLat = 111.195

// PoolStore answers the candidate-pool query and resolves owner names for
// notification payloads.
type PoolStore interface {
	ActiveInBox(ctx context.Context, kind posting.Kind, box posting.BBox, from, to time.Time) ([]*posting.Posting, error)
	ActiveUpcoming(ctx context.Context, kind posting.Kind, from, to time.Time) ([]*posting.Posting, error)
	OwnerName(ctx context.Context, userID types.ID) (string, error)
}

// Service consumes a bounded queue of freshly created postings. Matching is
// best effort: every failure in the pipeline is logged and contained, never
// surfaced to the creation path.
type Service struct {
	store PoolStore
	sink  notify.Sink
	cfg   Config
	log   *zap.Logger
	queue chan *posting.Posting
}

func NewService(store PoolStore, sink notify.Sink, cfg Config, log *zap.Logger) *Service {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store: store,
		sink:  sink,
		cfg:   cfg,
		log:   log,
		queue: make(chan *posting.Posting, cfg.QueueSize),
	}
}

// Enqueue hands a posting to the background worker without blocking. When
// the queue is full the posting is dropped: the contract is best effort and
// a missed suggestion only means no notification appears.
func (s *Service) Enqueue(p *posting.Posting) bool {
	select {
	case s.queue <- p:
		return true
	default:
		s.log.Warn("matching queue full, dropping posting",
			zap.String("posting_id", string(p.ID)))
		return false
	}
}

// Run drains the queue until ctx is cancelled. Start it once, in its own
// goroutine.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-s.queue:
			s.matchOne(ctx, p)
		}
	}
}

// matchOne executes a single matching run: pool query, filter, notify.
func (s *Service) matchOne(ctx context.Context, p *posting.Posting) {
	if !p.Matchable() {
		return
	}
	path, err := route.DecodePath(p.Polyline)
	if err != nil {
		// Malformed or degenerate route: the posting sits out of matching.
		s.log.Warn("posting route unusable for matching",
			zap.String("posting_id", string(p.ID)), zap.Error(err))
		return
	}

	box := poolBox(path, s.cfg.RadiusKm)
	from, to := p.Time.Add(-s.cfg.TimeWindow), p.Time.Add(s.cfg.TimeWindow)
	pool, err := s.store.ActiveInBox(ctx, p.Kind.Opposite(), box, from, to)
	if err != nil {
		// No retry: the run aborts and the posting simply gets no
		// suggestions.
		s.log.Error("candidate pool query failed",
			zap.String("posting_id", string(p.ID)), zap.Error(err))
		return
	}

	candidates, err := FindCandidates(p, pool, s.cfg)
	if err != nil {
		s.log.Warn("matching skipped",
			zap.String("posting_id", string(p.ID)), zap.Error(err))
		return
	}
	if len(candidates) == 0 {
		return
	}
	s.log.Info("found potential matches",
		zap.String("posting_id", string(p.ID)), zap.Int("count", len(candidates)))

	for _, c := range candidates {
		s.notifyPair(ctx, c)
	}
}

// notifyPair sends one asymmetric notification to each side of a match:
// the request owner learns about the ride, the ride owner about the
// request. A failed send is logged and skipped so the other side still
// hears about the match.
func (s *Service) notifyPair(ctx context.Context, c Candidate) {
	driverName := s.ownerName(ctx, c.Ride.OwnerID)
	passengerName := s.ownerName(ctx, c.Request.OwnerID)

	err := s.sink.Send(ctx, c.Request.OwnerID, notify.Notification{
		Type:      notify.TypeSuggestedRide,
		RelatedID: c.Ride.ID,
		Data: map[string]string{
			"driverName": driverName,
			"from":       c.Ride.FromCity,
			"to":         c.Ride.ToCity,
		},
	})
	if err != nil {
		s.log.Warn("notification dispatch failed",
			zap.String("user_id", string(c.Request.OwnerID)), zap.Error(err))
	}

	err = s.sink.Send(ctx, c.Ride.OwnerID, notify.Notification{
		Type:      notify.TypeSuggestedRequest,
		RelatedID: c.Request.ID,
		Data: map[string]string{
			"passengerName": passengerName,
			"from":          c.Request.FromCity,
			"to":            c.Request.ToCity,
		},
	})
	if err != nil {
		s.log.Warn("notification dispatch failed",
			zap.String("user_id", string(c.Ride.OwnerID)), zap.Error(err))
	}
}

func (s *Service) ownerName(ctx context.Context, id types.ID) string {
	name, err := s.store.OwnerName(ctx, id)
	if err != nil {
		s.log.Warn("owner name lookup failed",
			zap.String("user_id", string(id)), zap.Error(err))
		return ""
	}
	return name
}

// Search runs the synchronous availability search: UPCOMING postings of the
// given kind scheduled in [from, to] whose route covers the start→end trip,
// each priced for that trip.
func (s *Service) Search(ctx context.Context, kind posting.Kind, start, end types.Point, from, to time.Time) ([]SearchResult, error) {
	pool, err := s.store.ActiveUpcoming(ctx, kind, from, to)
	if err != nil {
		return nil, err
	}
	return SearchAvailable(pool, start, end, s.cfg.SearchRadiusKm, s.cfg.Pricing), nil
}

// poolBox is the route's bounding box padded by the match radius. Any
// posting whose endpoints can be within radius of the route lies inside it.
func poolBox(path *route.Path, radiusKm float64) posting.BBox {
	pts := path.Points()
	box := posting.BBox{
		MinLat: pts[0].Lat, MaxLat: pts[0].Lat,
		MinLng: pts[0].Lng, MaxLng: pts[0].Lng,
	}
	for _, pt := range pts[1:] {
		box.MinLat = math.Min(box.MinLat, pt.Lat)
		box.MaxLat = math.Max(box.MaxLat, pt.Lat)
		box.MinLng = math.Min(box.MinLng, pt.Lng)
		box.MaxLng = math.Max(box.MaxLng, pt.Lng)
	}
	latPad := radiusKm / kmPerDegreeLat
	midLat := (box.MinLat + box.MaxLat) / 2 * math.Pi / 180
	lngPad := latPad / math.Max(math.Cos(midLat), 0.01)
	box.MinLat -= latPad
	box.MaxLat += latPad
	box.MinLng -= lngPad
	box.MaxLng += lngPad
	return box
}
