// README: Posting handlers: create (with background matching hand-off),
// get, cancel, register interest.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mashwar/internal/modules/matching"
	"mashwar/internal/modules/posting"
	"mashwar/internal/types"
)

type PostingHandler struct {
	postings *posting.Service
	matcher  *matching.Service
}

func NewPostingHandler(postings *posting.Service, matcher *matching.Service) *PostingHandler {
	return &PostingHandler{postings: postings, matcher: matcher}
}

type createPostingReq struct {
	Kind           string  `json:"kind" binding:"required"`
	OriginLat      float64 `json:"originLat" binding:"required"`
	OriginLng      float64 `json:"originLng" binding:"required"`
	DestinationLat float64 `json:"destinationLat" binding:"required"`
	DestinationLng float64 `json:"destinationLng" binding:"required"`
	Polyline       string  `json:"polyline"`
	Time           string  `json:"time" binding:"required"`
	Seats          int     `json:"seats" binding:"required,min=1"`
	Price          float64 `json:"price" binding:"min=0"`
	FromCity       string  `json:"fromCity"`
	FromSuburb     string  `json:"fromSuburb"`
	ToCity         string  `json:"toCity"`
	ToSuburb       string  `json:"toSuburb"`
}

type postingResp struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"`
	OwnerID        string  `json:"ownerId"`
	OriginLat      float64 `json:"originLat"`
	OriginLng      float64 `json:"originLng"`
	DestinationLat float64 `json:"destinationLat"`
	DestinationLng float64 `json:"destinationLng"`
	Polyline       string  `json:"polyline,omitempty"`
	Time           string  `json:"time"`
	Seats          int     `json:"seats"`
	Price          float64 `json:"price"`
	Status         string  `json:"status"`
	FromCity       string  `json:"fromCity"`
	FromSuburb     string  `json:"fromSuburb,omitempty"`
	ToCity         string  `json:"toCity"`
	ToSuburb       string  `json:"toSuburb,omitempty"`
}

func toPostingResp(p *posting.Posting) postingResp {
	return postingResp{
		ID:             string(p.ID),
		Kind:           string(p.Kind),
		OwnerID:        string(p.OwnerID),
		OriginLat:      p.Origin.Lat,
		OriginLng:      p.Origin.Lng,
		DestinationLat: p.Destination.Lat,
		DestinationLng: p.Destination.Lng,
		Polyline:       p.Polyline,
		Time:           p.Time.UTC().Format(time.RFC3339),
		Seats:          p.Seats,
		Price:          p.Price,
		Status:         string(p.Status),
		FromCity:       p.FromCity,
		FromSuburb:     p.FromSuburb,
		ToCity:         p.ToCity,
		ToSuburb:       p.ToSuburb,
	}
}

// Create persists a posting and hands it to the background matcher. The
// matching hand-off never delays or fails the response.
func (h *PostingHandler) Create(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "missing user identity")
		return
	}
	var req createPostingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	when, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		writeError(c, http.StatusBadRequest, "time must be RFC3339")
		return
	}

	p, err := h.postings.Create(c.Request.Context(), posting.CreateCommand{
		OwnerID:     types.ID(actor),
		Kind:        posting.Kind(req.Kind),
		Origin:      types.Point{Lat: req.OriginLat, Lng: req.OriginLng},
		Destination: types.Point{Lat: req.DestinationLat, Lng: req.DestinationLng},
		Polyline:    req.Polyline,
		Time:        when,
		Seats:       req.Seats,
		Price:       req.Price,
		FromCity:    req.FromCity,
		FromSuburb:  req.FromSuburb,
		ToCity:      req.ToCity,
		ToSuburb:    req.ToSuburb,
	})
	if err != nil {
		writePostingError(c, err)
		return
	}

	if h.matcher != nil {
		h.matcher.Enqueue(p)
	}
	c.JSON(http.StatusCreated, toPostingResp(p))
}

func (h *PostingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid posting id")
		return
	}
	p, err := h.postings.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writePostingError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPostingResp(p))
}

func (h *PostingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.postings.Cancel, posting.StatusCancelled)
}

func (h *PostingHandler) Start(c *gin.Context) {
	h.transition(c, h.postings.Start, posting.StatusInProgress)
}

func (h *PostingHandler) Complete(c *gin.Context) {
	h.transition(c, h.postings.Complete, posting.StatusCompleted)
}

func (h *PostingHandler) transition(c *gin.Context, apply func(context.Context, types.ID, types.ID) error, to posting.Status) {
	actor, ok := actorID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "missing user identity")
		return
	}
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid posting id")
		return
	}
	if err := apply(c.Request.Context(), types.ID(id), types.ID(actor)); err != nil {
		writePostingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": to})
}

func (h *PostingHandler) RegisterInterest(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "missing user identity")
		return
	}
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid posting id")
		return
	}
	if err := h.postings.RegisterInterest(c.Request.Context(), types.ID(id), types.ID(actor)); err != nil {
		writePostingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "interest registered"})
}
