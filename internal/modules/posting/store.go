// README: Posting store backed by PostgreSQL.
package posting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mashwar/internal/types"
)

var (
	ErrNotFound     = errors.New("posting not found")
	ErrInvalidState = errors.New("invalid status transition")
	ErrConflict     = errors.New("posting status conflict")
	ErrBadRequest   = errors.New("bad request")
	// ErrSpatialQuery wraps failures of the candidate-pool query so the
	// matching pipeline can recognize and contain them.
	ErrSpatialQuery = errors.New("spatial query failed")
)

// BBox is a latitude/longitude bounding box used as the coarse spatial
// filter for the candidate-pool query.
type BBox struct {
	MinLat, MinLng float64
	MaxLat, MaxLng float64
}

// Contains reports whether a point lies inside the box.
func (b BBox) Contains(p types.Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const postingColumns = `
	id, kind, owner_id,
	origin_lat, origin_lng, destination_lat, destination_lng,
	polyline, time, seats, price, status,
	from_city, from_suburb, to_city, to_suburb,
	from_city_norm, from_suburb_norm, to_city_norm, to_suburb_norm,
	created_at`

func (s *Store) Create(ctx context.Context, p *Posting) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO postings (
			id, kind, owner_id,
			origin_lat, origin_lng, destination_lat, destination_lng,
			polyline, time, seats, price, status,
			from_city, from_suburb, to_city, to_suburb,
			from_city_norm, from_suburb_norm, to_city_norm, to_suburb_norm,
			created_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19, $20,
			$21
		)`,
		string(p.ID), string(p.Kind), string(p.OwnerID),
		p.Origin.Lat, p.Origin.Lng, p.Destination.Lat, p.Destination.Lng,
		p.Polyline, p.Time, p.Seats, p.Price, string(p.Status),
		p.FromCity, p.FromSuburb, p.ToCity, p.ToSuburb,
		p.FromCityNorm, p.FromSuburbNorm, p.ToCityNorm, p.ToSuburbNorm,
		p.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Posting, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+postingColumns+` FROM postings WHERE id = $1`, string(id))
	p, err := scanPosting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// UpdateStatus performs a guarded transition: the update only applies while
// the row still carries the expected current status.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE postings
		SET status = $1
		WHERE id = $2 AND status = $3`,
		string(to), string(id), string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ActiveInBox returns UPCOMING postings of the given kind that carry a route
// and whose origin and destination both fall inside the box, scheduled
// within [from, to]. This is the coarse pool for the candidate filter; the
// precise route-projection tests run in memory afterwards.
func (s *Store) ActiveInBox(ctx context.Context, kind Kind, box BBox, from, to time.Time) ([]*Posting, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+postingColumns+`
		FROM postings
		WHERE status = 'UPCOMING'
		  AND kind = $1
		  AND polyline <> ''
		  AND origin_lat BETWEEN $2 AND $3
		  AND origin_lng BETWEEN $4 AND $5
		  AND destination_lat BETWEEN $2 AND $3
		  AND destination_lng BETWEEN $4 AND $5
		  AND time >= $6 AND time <= $7`,
		string(kind),
		box.MinLat, box.MaxLat,
		box.MinLng, box.MaxLng,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpatialQuery, err)
	}
	defer rows.Close()

	var out []*Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSpatialQuery, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpatialQuery, err)
	}
	return out, nil
}

// ActiveUpcoming returns every UPCOMING posting of the given kind with a
// route, scheduled within [from, to]. The availability search scans this
// pool in memory; pool sizes are city-scale, not global.
func (s *Store) ActiveUpcoming(ctx context.Context, kind Kind, from, to time.Time) ([]*Posting, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+postingColumns+`
		FROM postings
		WHERE status = 'UPCOMING'
		  AND kind = $1
		  AND polyline <> ''
		  AND time >= $2 AND time <= $3
		ORDER BY time ASC`,
		string(kind), from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetMany fetches postings by id, silently dropping ids that no longer
// exist.
func (s *Store) GetMany(ctx context.Context, ids []types.ID) ([]*Posting, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+postingColumns+` FROM postings WHERE id = ANY($1)`, raw)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AddInterest records that a user wants in on a posting. A duplicate
// registration surfaces as ErrConflict.
func (s *Store) AddInterest(ctx context.Context, postingID, userID types.ID) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO posting_interests (posting_id, user_id, created_at)
		VALUES ($1, $2, NOW())`,
		string(postingID), string(userID),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

// InterestedUsers lists everyone who registered interest in a posting.
func (s *Store) InterestedUsers(ctx context.Context, postingID types.ID) ([]types.ID, error) {
	rows, err := s.db.Query(ctx,
		`SELECT user_id FROM posting_interests WHERE posting_id = $1`, string(postingID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, types.ID(id))
	}
	return out, rows.Err()
}

// SearchByPlace is the text fallback: match on normalized city names when a
// posting has no route geometry to match against.
func (s *Store) SearchByPlace(ctx context.Context, kind Kind, fromCityNorm, toCityNorm string) ([]*Posting, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+postingColumns+`
		FROM postings
		WHERE status = 'UPCOMING'
		  AND kind = $1
		  AND from_city_norm = $2
		  AND to_city_norm = $3
		ORDER BY time ASC`,
		string(kind), fromCityNorm, toCityNorm,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// OwnerName resolves a user's display name for notification payloads.
func (s *Store) OwnerName(ctx context.Context, userID types.ID) (string, error) {
	var name string
	err := s.db.QueryRow(ctx,
		`SELECT name FROM users WHERE id = $1`, string(userID)).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return name, err
}

func scanPosting(row pgx.Row) (*Posting, error) {
	var p Posting
	err := row.Scan(
		&p.ID, &p.Kind, &p.OwnerID,
		&p.Origin.Lat, &p.Origin.Lng, &p.Destination.Lat, &p.Destination.Lng,
		&p.Polyline, &p.Time, &p.Seats, &p.Price, &p.Status,
		&p.FromCity, &p.FromSuburb, &p.ToCity, &p.ToSuburb,
		&p.FromCityNorm, &p.FromSuburbNorm, &p.ToCityNorm, &p.ToSuburbNorm,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
