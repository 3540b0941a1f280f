package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/giftpropaganda/news-backend/database"
	"github.com/giftpropaganda/news-backend/model"
	"github.com/giftpropaganda/news-backend/server/middlewares"
	Logger "github.com/giftpropaganda/news-backend/utils/log"
)

// NewsServer is the thin HTTP surface over the storage layer. Routing only;
// every data access goes through a scoped unit of work.
type NewsServer struct {
	store *database.Store
}

// New builds the router.
func New(store *database.Store) *gin.Engine {
	s := &NewsServer{store: store}

	router := gin.Default()
	router.Use(middlewares.RequestId())
	router.Use(middlewares.Cors())

	router.GET("/healthz", s.Health)

	api := router.Group("/api")
	api.GET("/news", s.ListNews)
	api.GET("/news/:id", s.GetNews)
	api.GET("/sources", s.ListSources)

	return router
}

// Health reflects the probe result directly, as the readiness check expects.
func (s *NewsServer) Health(c *gin.Context) {
	if !s.store.Probe(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *NewsServer) ListNews(c *gin.Context) {
	query := database.NewsItemQuery{
		Limit:  intQuery(c, "limit"),
		Offset: intQuery(c, "offset"),
		// SourceID zero means no filter
		SourceID: uint(intQuery(c, "source_id")),
		Category: c.Query("category"),
	}

	var items []model.NewsItem
	err := s.store.WithSession(c.Request.Context(), func(tx *gorm.DB) error {
		var err error
		items, err = database.ListNewsItems(tx, query)
		return err
	})
	if err != nil {
		abortWithStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (s *NewsServer) GetNews(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid news item id"})
		return
	}

	// read and view-count bump share one unit of work
	var item *model.NewsItem
	err = s.store.WithSession(c.Request.Context(), func(tx *gorm.DB) error {
		if err := database.IncrementViews(tx, uint(id)); err != nil {
			return err
		}
		var err error
		item, err = database.GetNewsItemById(tx, uint(id))
		return err
	})
	if err != nil {
		abortWithStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *NewsServer) ListSources(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	var sources []model.NewsSource
	err := s.store.WithSession(c.Request.Context(), func(tx *gorm.DB) error {
		var err error
		sources, err = database.ListSources(tx, activeOnly)
		return err
	})
	if err != nil {
		abortWithStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources, "count": len(sources)})
}

// abortWithStorageError maps the storage taxonomy onto HTTP statuses.
func abortWithStorageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "not found"})
	case errors.Is(err, database.ErrConnectionUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"msg": "database unavailable"})
	default:
		Logger.Log.Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
	}
}

// intQuery parses a non-negative integer query parameter. Absent, malformed
// or negative values all mean "no filter" and come back as 0, so they can
// never wrap around in a uint conversion.
func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
