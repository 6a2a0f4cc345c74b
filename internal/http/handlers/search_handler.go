// README: Search handlers: availability search with partial pricing, and the
// map nearby lookup.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mashwar/internal/modules/matching"
	"mashwar/internal/modules/posting"
	"mashwar/internal/types"
)

// defaultSearchWindow bounds the undated search to the near future.
const defaultSearchWindow = 7 * 24 * time.Hour

type SearchHandler struct {
	postings *posting.Service
	matcher  *matching.Service
	nearbyKm float64
}

func NewSearchHandler(postings *posting.Service, matcher *matching.Service, nearbyKm float64) *SearchHandler {
	return &SearchHandler{postings: postings, matcher: matcher, nearbyKm: nearbyKm}
}

type searchResultResp struct {
	postingResp
	IsPartialMatch bool    `json:"isPartialMatch"`
	PartialPrice   float64 `json:"partialPrice"`
}

// Search returns UPCOMING postings whose route covers the searcher's trip,
// each with the price for that trip. startLat/startLng/endLat/endLng select
// the geospatial search; from/to city names select the text fallback instead.
// date (YYYY-MM-DD) restricts results to one day.
func (h *SearchHandler) Search(c *gin.Context) {
	kind := posting.KindRide
	if c.Query("kind") == string(posting.KindRequest) {
		kind = posting.KindRequest
	}

	start, haveStart := pointParam(c, "startLat", "startLng")
	if !haveStart {
		h.searchByPlace(c, kind)
		return
	}
	end, ok := pointParam(c, "endLat", "endLng")
	if !ok {
		writeError(c, http.StatusBadRequest, "end coordinates required")
		return
	}

	from := time.Now().UTC()
	to := from.Add(defaultSearchWindow)
	if date := c.Query("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			writeError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		from = day
		to = day.Add(24 * time.Hour)
	}

	results, err := h.matcher.Search(c.Request.Context(), kind, start, end, from, to)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "search failed")
		return
	}

	out := make([]searchResultResp, 0, len(results))
	for _, r := range results {
		out = append(out, searchResultResp{
			postingResp:    toPostingResp(r.Posting),
			IsPartialMatch: r.IsPartialMatch,
			PartialPrice:   r.Price,
		})
	}
	c.JSON(http.StatusOK, out)
}

// searchByPlace matches on normalized city names. Postings without route
// geometry only ever surface here, at their posted price.
func (h *SearchHandler) searchByPlace(c *gin.Context, kind posting.Kind) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		writeError(c, http.StatusBadRequest, "start coordinates or from/to cities required")
		return
	}
	found, err := h.postings.SearchByPlace(c.Request.Context(), kind, from, to)
	if err != nil {
		writePostingError(c, err)
		return
	}
	out := make([]searchResultResp, 0, len(found))
	for _, p := range found {
		out = append(out, searchResultResp{
			postingResp:    toPostingResp(p),
			IsPartialMatch: false,
			PartialPrice:   p.Price,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Nearby lists postings whose origin is close to a map point, closest first.
func (h *SearchHandler) Nearby(c *gin.Context) {
	center, ok := pointParam(c, "lat", "lng")
	if !ok {
		writeError(c, http.StatusBadRequest, "coordinates required")
		return
	}
	kind := posting.KindRide
	if c.Query("kind") == string(posting.KindRequest) {
		kind = posting.KindRequest
	}
	radius := h.nearbyKm
	if v := c.Query("radiusKm"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
			radius = r
		}
	}

	found, err := h.postings.Nearby(c.Request.Context(), kind, center, radius)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "nearby lookup failed")
		return
	}
	out := make([]postingResp, 0, len(found))
	for _, p := range found {
		out = append(out, toPostingResp(p))
	}
	c.JSON(http.StatusOK, out)
}

func pointParam(c *gin.Context, latKey, lngKey string) (types.Point, bool) {
	lat, err1 := strconv.ParseFloat(c.Query(latKey), 64)
	lng, err2 := strconv.ParseFloat(c.Query(lngKey), 64)
	if err1 != nil || err2 != nil {
		return types.Point{}, false
	}
	return types.Point{Lat: lat, Lng: lng}, true
}
