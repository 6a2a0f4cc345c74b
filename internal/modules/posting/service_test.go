package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"mashwar/internal/modules/route"
	"mashwar/internal/types"
)

func validCreateCommand() CreateCommand {
	return CreateCommand{
		OwnerID:     types.ID("u1"),
		Kind:        KindRide,
		Origin:      types.Point{Lat: 30.05, Lng: 31.35},
		Destination: types.Point{Lat: 30.03, Lng: 31.20},
		Time:        time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Seats:       3,
		Price:       55,
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil)

	tests := []struct {
		name    string
		mutate  func(*CreateCommand)
		wantErr error
	}{
		{"no owner", func(c *CreateCommand) { c.OwnerID = "" }, ErrBadRequest},
		{"zero seats", func(c *CreateCommand) { c.Seats = 0 }, ErrBadRequest},
		{"negative price", func(c *CreateCommand) { c.Price = -1 }, ErrBadRequest},
		{"zero time", func(c *CreateCommand) { c.Time = time.Time{} }, ErrBadRequest},
		{"unknown kind", func(c *CreateCommand) { c.Kind = Kind("TAXI") }, ErrBadRequest},
		{"broken polyline", func(c *CreateCommand) { c.Polyline = "_p~iF" }, route.ErrMalformedPolyline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCreateCommand()
			tt.mutate(&cmd)
			_, err := svc.Create(context.Background(), cmd)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSearchByPlaceValidation(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil)
	tests := []struct {
		name     string
		from, to string
	}{
		{"empty from", "", "Giza"},
		{"empty to", "Cairo", ""},
		{"from normalizes to nothing", "!!!", "Giza"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SearchByPlace(context.Background(), KindRide, tt.from, tt.to)
			if !errors.Is(err, ErrBadRequest) {
				t.Errorf("SearchByPlace(%q, %q) error = %v, want ErrBadRequest", tt.from, tt.to, err)
			}
		})
	}
}

func TestNewIDFormat(t *testing.T) {
	seen := map[types.ID]bool{}
	for i := 0; i < 100; i++ {
		id := newID()
		if len(id) != 32 {
			t.Fatalf("newID() = %q, want 32 hex chars", id)
		}
		for _, c := range string(id) {
			if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
				t.Fatalf("newID() = %q, contains non-hex char %q", id, c)
			}
		}
		if seen[id] {
			t.Fatalf("newID() repeated %q", id)
		}
		seen[id] = true
	}
}

func TestBBoxContains(t *testing.T) {
	box := BBox{MinLat: 29.9, MaxLat: 30.1, MinLng: 31.0, MaxLng: 31.3}
	tests := []struct {
		p    types.Point
		want bool
	}{
		{types.Point{Lat: 30.0, Lng: 31.1}, true},
		{types.Point{Lat: 29.9, Lng: 31.0}, true},
		{types.Point{Lat: 30.1, Lng: 31.3}, true},
		{types.Point{Lat: 30.2, Lng: 31.1}, false},
		{types.Point{Lat: 30.0, Lng: 30.9}, false},
		{types.Point{Lat: 29.8, Lng: 31.4}, false},
	}
	for _, tt := range tests {
		if got := box.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
