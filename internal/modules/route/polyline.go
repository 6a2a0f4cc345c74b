// README: Google encoded-polyline codec (1e-5 precision), bit-compatible
// with the encoding produced by the upstream routing provider.
package route

import (
	"errors"
	"math"
	"strings"

	"mashwar/internal/types"
)

// ErrMalformedPolyline reports a corrupt encoded path: a byte outside the
// printable encoding range or a value truncated mid-varint.
var ErrMalformedPolyline = errors.New("malformed polyline")

const precision = 1e-5

// Decode converts an encoded polyline string into an ordered sequence of
// points. Empty input yields an empty sequence.
func Decode(encoded string) ([]types.Point, error) {
	var points []types.Point
	var lat, lng int64
	for i := 0; i < len(encoded); {
		dLat, next, err := decodeValue(encoded, i)
		if err != nil {
			return nil, err
		}
		dLng, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		lat += dLat
		lng += dLng
		points = append(points, types.Point{
			Lat: float64(lat) * precision,
			Lng: float64(lng) * precision,
		})
		i = next
	}
	return points, nil
}

// Encode returns the encoded form of a point sequence. Decode(Encode(p))
// reproduces p within the 1e-5 degree quantization.
func Encode(points []types.Point) string {
	var b strings.Builder
	var prevLat, prevLng int64
	for _, p := range points {
		lat := int64(math.Round(p.Lat / precision))
		lng := int64(math.Round(p.Lng / precision))
		encodeValue(&b, lat-prevLat)
		encodeValue(&b, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return b.String()
}

func decodeValue(s string, i int) (int64, int, error) {
	var result int64
	var shift uint
	for {
		if i >= len(s) {
			return 0, 0, ErrMalformedPolyline
		}
		b := int64(s[i]) - 63
		if b < 0 || b > 63 {
			return 0, 0, ErrMalformedPolyline
		}
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
		// A coordinate delta never needs more than 7 chunks; anything longer
		// is garbage, not a path.
		if shift > 35 {
			return 0, 0, ErrMalformedPolyline
		}
	}
	if result&1 != 0 {
		result = ^(result >> 1)
	} else {
		result >>= 1
	}
	return result, i, nil
}

func encodeValue(b *strings.Builder, v int64) {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		b.WriteByte(byte((u&0x1f)|0x20) + 63)
		u >>= 5
	}
	b.WriteByte(byte(u) + 63)
}
