// README: Posting service implements creation, lifecycle transitions and
// persistence wiring.
package posting

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"go.uber.org/zap"

	"mashwar/internal/modules/geo"
	"mashwar/internal/modules/notify"
	"mashwar/internal/modules/route"
	"mashwar/internal/types"
)

// ErrForbidden reports an action by someone other than the posting owner.
var ErrForbidden = errors.New("not the posting owner")

// RouteProvider supplies an encoded route polyline and its driving distance
// for an origin/destination pair. Backed by the maps client in production.
type RouteProvider interface {
	Route(ctx context.Context, origin, destination types.Point) (polyline string, distanceKm float64, err error)
}

type Service struct {
	store  *Store
	index  *GeoIndex
	routes RouteProvider
	sink   notify.Sink
	log    *zap.Logger
}

// NewService wires the posting workflow. index, routes and sink may be nil;
// the service degrades to plain persistence without them.
func NewService(store *Store, index *GeoIndex, routes RouteProvider, sink notify.Sink, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, index: index, routes: routes, sink: sink, log: log}
}

type CreateCommand struct {
	OwnerID     types.ID
	Kind        Kind
	Origin      types.Point
	Destination types.Point
	Polyline    string
	Time        time.Time
	Seats       int
	Price       float64
	FromCity    string
	FromSuburb  string
	ToCity      string
	ToSuburb    string
}

// Create validates and persists a posting. Place names are normalized for
// the fallback search; when no polyline is supplied and a route provider is
// configured, the route is fetched from it. A posting without a route is
// still valid, it just never enters geospatial matching.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Posting, error) {
	if cmd.OwnerID == "" || cmd.Seats < 1 || cmd.Price < 0 || cmd.Time.IsZero() {
		return nil, ErrBadRequest
	}
	if cmd.Kind != KindRide && cmd.Kind != KindRequest {
		return nil, ErrBadRequest
	}
	if cmd.Polyline != "" {
		if _, err := route.Decode(cmd.Polyline); err != nil {
			return nil, err
		}
	} else if s.routes != nil {
		poly, _, err := s.routes.Route(ctx, cmd.Origin, cmd.Destination)
		if err != nil {
			s.log.Warn("route provider failed, posting created without route",
				zap.Error(err))
		} else {
			cmd.Polyline = poly
		}
	}

	p := &Posting{
		ID:             newID(),
		Kind:           cmd.Kind,
		OwnerID:        cmd.OwnerID,
		Origin:         cmd.Origin,
		Destination:    cmd.Destination,
		Polyline:       cmd.Polyline,
		Time:           cmd.Time,
		Seats:          cmd.Seats,
		Price:          cmd.Price,
		Status:         StatusUpcoming,
		FromCity:       cmd.FromCity,
		FromSuburb:     cmd.FromSuburb,
		ToCity:         cmd.ToCity,
		ToSuburb:       cmd.ToSuburb,
		FromCityNorm:   geo.NormalizePlace(cmd.FromCity),
		FromSuburbNorm: geo.NormalizePlace(cmd.FromSuburb),
		ToCityNorm:     geo.NormalizePlace(cmd.ToCity),
		ToSuburbNorm:   geo.NormalizePlace(cmd.ToSuburb),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	if s.index != nil {
		// The index is advisory; a failed add only degrades the map view.
		if err := s.index.Add(ctx, p); err != nil {
			s.log.Warn("geo index add failed", zap.String("posting_id", string(p.ID)), zap.Error(err))
		}
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Posting, error) {
	return s.store.Get(ctx, id)
}

// Cancel moves an owner's posting to CANCELLED and drops it from the index.
func (s *Service) Cancel(ctx context.Context, id, actorID types.ID) error {
	return s.transition(ctx, id, actorID, StatusCancelled)
}

// Start moves a posting to IN_PROGRESS.
func (s *Service) Start(ctx context.Context, id, actorID types.ID) error {
	return s.transition(ctx, id, actorID, StatusInProgress)
}

// Complete moves a posting to COMPLETED.
func (s *Service) Complete(ctx context.Context, id, actorID types.ID) error {
	return s.transition(ctx, id, actorID, StatusCompleted)
}

func (s *Service) transition(ctx context.Context, id, actorID types.ID, to Status) error {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID != actorID {
		return ErrForbidden
	}
	if !CanTransition(p.Status, to) {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, id, p.Status, to)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	if s.index != nil && to != StatusInProgress {
		if err := s.index.Remove(ctx, p.Kind, p.ID); err != nil {
			s.log.Warn("geo index remove failed", zap.String("posting_id", string(p.ID)), zap.Error(err))
		}
	}
	if to == StatusInProgress {
		s.notifyConfirmed(ctx, p)
	}
	return nil
}

// notifyConfirmed tells everyone who registered interest that the ride is
// underway. Best effort: lookup or send failures only cost the notification.
func (s *Service) notifyConfirmed(ctx context.Context, p *Posting) {
	if s.sink == nil {
		return
	}
	users, err := s.store.InterestedUsers(ctx, p.ID)
	if err != nil {
		s.log.Warn("interested users lookup failed",
			zap.String("posting_id", string(p.ID)), zap.Error(err))
		return
	}
	ownerName, err := s.store.OwnerName(ctx, p.OwnerID)
	if err != nil {
		s.log.Warn("owner name lookup failed", zap.String("user_id", string(p.OwnerID)), zap.Error(err))
	}
	for _, userID := range users {
		err := s.sink.Send(ctx, userID, notify.Notification{
			Type:      notify.TypeRideConfirmed,
			RelatedID: p.ID,
			Data: map[string]string{
				"driverName": ownerName,
				"from":       p.FromCity,
				"to":         p.ToCity,
			},
		})
		if err != nil {
			s.log.Warn("notification dispatch failed", zap.String("user_id", string(userID)), zap.Error(err))
		}
	}
}

// SearchByPlace is the text fallback for postings without route geometry:
// match on normalized city names.
func (s *Service) SearchByPlace(ctx context.Context, kind Kind, fromCity, toCity string) ([]*Posting, error) {
	from := geo.NormalizePlace(fromCity)
	to := geo.NormalizePlace(toCity)
	if from == "" || to == "" {
		return nil, ErrBadRequest
	}
	return s.store.SearchByPlace(ctx, kind, from, to)
}

// Nearby returns postings whose origin lies within radiusKm of p, closest
// first, backed by the Redis GEO index.
func (s *Service) Nearby(ctx context.Context, kind Kind, p types.Point, radiusKm float64) ([]*Posting, error) {
	if s.index == nil {
		return nil, nil
	}
	ids, err := s.index.Nearby(ctx, kind, p, radiusKm)
	if err != nil {
		return nil, err
	}
	return s.store.GetMany(ctx, ids)
}

// RegisterInterest records a user's interest in a posting and tells the
// owner. Notification failure never fails the registration.
func (s *Service) RegisterInterest(ctx context.Context, postingID, userID types.ID) error {
	p, err := s.store.Get(ctx, postingID)
	if err != nil {
		return err
	}
	if p.OwnerID == userID {
		return ErrBadRequest
	}
	if err := s.store.AddInterest(ctx, postingID, userID); err != nil {
		return err
	}
	if s.sink == nil {
		return nil
	}
	name, err := s.store.OwnerName(ctx, userID)
	if err != nil {
		s.log.Warn("owner name lookup failed", zap.String("user_id", string(userID)), zap.Error(err))
	}
	err = s.sink.Send(ctx, p.OwnerID, notify.Notification{
		Type:      notify.TypeNewInterest,
		RelatedID: p.ID,
		Data: map[string]string{
			"userName": name,
			"from":     p.FromCity,
			"to":       p.ToCity,
		},
	})
	if err != nil {
		s.log.Warn("notification dispatch failed", zap.String("user_id", string(p.OwnerID)), zap.Error(err))
	}
	return nil
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
