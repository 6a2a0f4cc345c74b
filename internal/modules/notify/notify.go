// README: Notification payloads and the delivery sink contract.
package notify

import (
	"context"

	"mashwar/internal/types"
)

// Notification types understood by the client apps.
const (
	TypeSuggestedRide    = "SUGGESTED_RIDE"
	TypeSuggestedRequest = "SUGGESTED_REQUEST"
	TypeNewInterest      = "NEW_INTEREST"
	TypeRideConfirmed    = "RIDE_CONFIRMED"
)

// Notification is a user-facing event. RelatedID points at the posting the
// recipient's client should deep-link to; Data carries the template fields
// (names, cities) the client renders.
type Notification struct {
	Type      string            `json:"type"`
	RelatedID types.ID          `json:"relatedId"`
	Data      map[string]string `json:"data,omitempty"`
}

// Sink delivers a notification to one user. Implementations hand off to the
// socket gateway; delivery beyond that hand-off is best effort.
type Sink interface {
	Send(ctx context.Context, userID types.ID, n Notification) error
}
