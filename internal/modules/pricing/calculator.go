// README: Partial-route fare calculator.
package pricing

import "math"

const (
	// DefaultRoundTo is the currency-unit rounding step for user-facing
	// prices.
	DefaultRoundTo = 5.0
	// DefaultMinFare is the minimum fare returned for any partial trip.
	DefaultMinFare = 10.0
)

// Calculator derives a fair price for a trip that covers only part of a
// posted route. The model is deliberately proportional: full price scaled by
// the passenger's direct origin→destination distance over the route's total
// length. Not a shortest-path cost model.
type Calculator struct {
	RoundTo float64
	MinFare float64
}

func NewCalculator(roundTo, minFare float64) Calculator {
	if roundTo <= 0 {
		roundTo = DefaultRoundTo
	}
	if minFare < 0 {
		minFare = DefaultMinFare
	}
	return Calculator{RoundTo: roundTo, MinFare: minFare}
}

// PartialPrice computes the pro-rated fare. When the route's total distance
// is unknown or zero the full price is returned unmodified. Otherwise the
// raw proportional price is rounded up to the nearest RoundTo multiple and
// clamped to MinFare.
func (c Calculator) PartialPrice(fullPrice, rideTotalKm, passengerKm float64) float64 {
	if rideTotalKm <= 0 {
		return fullPrice
	}
	raw := fullPrice * (passengerKm / rideTotalKm)
	price := math.Ceil(raw/c.RoundTo) * c.RoundTo
	if price < c.MinFare {
		price = c.MinFare
	}
	return price
}
