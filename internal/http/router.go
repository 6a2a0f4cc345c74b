// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mashwar/internal/http/handlers"
	"mashwar/internal/http/middleware"
	"mashwar/internal/modules/matching"
	"mashwar/internal/modules/posting"
)

type RouterDeps struct {
	Postings *posting.Service
	Matcher  *matching.Service
	NearbyKm float64
	Log      *zap.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	postingHandler := handlers.NewPostingHandler(deps.Postings, deps.Matcher)
	r.POST("/api/postings", postingHandler.Create)
	r.GET("/api/postings/:id", postingHandler.Get)
	r.POST("/api/postings/:id/cancel", postingHandler.Cancel)
	r.POST("/api/postings/:id/start", postingHandler.Start)
	r.POST("/api/postings/:id/complete", postingHandler.Complete)
	r.POST("/api/postings/:id/interest", postingHandler.RegisterInterest)

	searchHandler := handlers.NewSearchHandler(deps.Postings, deps.Matcher, deps.NearbyKm)
	r.GET("/api/search", searchHandler.Search)
	r.GET("/api/nearby", searchHandler.Nearby)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
