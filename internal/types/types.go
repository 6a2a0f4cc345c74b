// README: Common identifier and coordinate value objects used across modules.
package types

// ID is an opaque entity identifier.
type ID string

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
