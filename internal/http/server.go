package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/StrafeZ/quality-inspector-app/internal/cache"
	"github.com/StrafeZ/quality-inspector-app/internal/models"
	"github.com/StrafeZ/quality-inspector-app/internal/service"
)

// Server wraps the gin engine and the services needed to handle API requests.
type Server struct {
	Engine      *gin.Engine
	orders      *service.OrderService
	inspections *service.InspectionService
	alterations *service.AlterationService
	stats       *service.StatsService
	cache       *cache.Cache
	log         *zap.Logger
}

// NewServer constructs the API server and registers routes. cache may be nil;
// aggregate reads then always hit the store.
func NewServer(orders *service.OrderService, inspections *service.InspectionService, alterations *service.AlterationService, stats *service.StatsService, c *cache.Cache, jwtSecret string, log *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(log))

	srv := &Server{
		Engine:      router,
		orders:      orders,
		inspections: inspections,
		alterations: alterations,
		stats:       stats,
		cache:       c,
		log:         log,
	}
	srv.registerRoutes(jwtSecret)
	return srv
}

func (s *Server) registerRoutes(jwtSecret string) {
	s.Engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.Engine.Group("/api")
	api.Use(JWTAuth(jwtSecret))

	api.GET("/orders", s.listActiveOrders)
	api.GET("/orders/:id", s.getOrderSummary)
	api.GET("/orders/:id/job-cards", s.listJobCards)
	api.GET("/job-cards/:id", s.getJobCard)
	api.GET("/job-cards/:id/alterations", s.listJobCardAlterations)

	api.POST("/inspections", s.startInspection)
	api.GET("/inspections", s.listInspectionsByCohort)
	api.GET("/inspections/:id", s.getInspection)
	api.POST("/inspections/:id/complete", s.completeInspection)

	api.POST("/alterations", s.createAlteration)
	api.POST("/alterations/:id/correct", s.correctAlteration)

	api.GET("/templates", s.listTemplates)
	api.POST("/templates", s.createTemplate)
	api.PUT("/templates/:id", s.updateTemplate)
	api.DELETE("/templates/:id", s.deleteTemplate)

	api.GET("/stats", s.getCohortStats)
}

func (s *Server) listActiveOrders(c *gin.Context) {
	orders, err := s.orders.ListActiveOrders(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrderSummary(c *gin.Context) {
	identifier := c.Param("id")

	// The cache entry lives under the canonical order id so write paths can
	// invalidate it. A production-PO lookup misses here and recomputes.
	var summary service.OrderSummary
	if s.cacheGet(c.Request.Context(), service.KeyOrderSummary(identifier), &summary) {
		c.JSON(http.StatusOK, summary)
		return
	}

	result, err := s.orders.GetOrderSummary(c.Request.Context(), identifier)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.cacheSet(c.Request.Context(), service.KeyOrderSummary(result.Order.OrderID), result)
	c.JSON(http.StatusOK, result)
}

func (s *Server) listJobCards(c *gin.Context) {
	order, err := s.orders.ResolveOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	cards, err := s.orders.ListJobCards(c.Request.Context(), order.OrderID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (s *Server) getJobCard(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}
	detail, err := s.orders.GetJobCard(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) listJobCardAlterations(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}

	var cached []models.Alteration
	key := service.KeyJobCardAlterations(id)
	if s.cacheGet(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	alterations, err := s.alterations.ListByJobCard(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.cacheSet(c.Request.Context(), key, alterations)
	c.JSON(http.StatusOK, alterations)
}

func (s *Server) startInspection(c *gin.Context) {
	var payload struct {
		OrderID string `json:"orderId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, _ := service.ActorFrom(c.Request.Context())
	report, err := s.inspections.Start(c.Request.Context(), actor, payload.OrderID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (s *Server) listInspectionsByCohort(c *gin.Context) {
	reports, err := s.inspections.ListByCohort(c.Request.Context(), c.Query("style"), c.Query("color"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (s *Server) getInspection(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}

	var cached service.InspectionDetail
	key := service.KeyInspection(id)
	if s.cacheGet(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	detail, err := s.inspections.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.cacheSet(c.Request.Context(), key, detail)
	c.JSON(http.StatusOK, detail)
}

func (s *Server) completeInspection(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}
	var payload struct {
		OverallStatus     string `json:"overallStatus" binding:"required"`
		GeneralNotes      string `json:"generalNotes"`
		InspectorComments string `json:"inspectorComments"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, _ := service.ActorFrom(c.Request.Context())
	report, err := s.inspections.Complete(c.Request.Context(), actor, id,
		payload.OverallStatus, payload.GeneralNotes, payload.InspectorComments)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) createAlteration(c *gin.Context) {
	var input service.CreateAlterationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, _ := service.ActorFrom(c.Request.Context())
	alteration, err := s.alterations.Create(c.Request.Context(), actor, input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alteration)
}

func (s *Server) correctAlteration(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}
	actor, _ := service.ActorFrom(c.Request.Context())
	alteration, err := s.alterations.MarkCorrected(c.Request.Context(), actor, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alteration)
}

func (s *Server) listTemplates(c *gin.Context) {
	var cached []models.AlterationTemplate
	if s.cacheGet(c.Request.Context(), service.KeyAlterationTemplates, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	templates, err := s.alterations.ListTemplates(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.cacheSet(c.Request.Context(), service.KeyAlterationTemplates, templates)
	c.JSON(http.StatusOK, templates)
}

func (s *Server) createTemplate(c *gin.Context) {
	var input service.TemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	template, err := s.alterations.CreateTemplate(c.Request.Context(), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

func (s *Server) updateTemplate(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}
	var input service.TemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	template, err := s.alterations.UpdateTemplate(c.Request.Context(), id, input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (s *Server) deleteTemplate(c *gin.Context) {
	id, ok := s.parseID(c)
	if !ok {
		return
	}
	if err := s.alterations.DeleteTemplate(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getCohortStats(c *gin.Context) {
	style, color := c.Query("style"), c.Query("color")
	if style == "" || color == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "style and color are required"})
		return
	}

	var cached service.CohortStats
	key := service.KeyCohortStats(style, color)
	if s.cacheGet(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	stats, err := s.stats.CohortStats(c.Request.Context(), style, color)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.cacheSet(c.Request.Context(), key, stats)
	c.JSON(http.StatusOK, stats)
}

func (s *Server) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if conflict, ok := service.IsConflict(err); ok {
			body := gin.H{"error": conflict.Reason}
			if conflict.Existing != nil {
				body["existing"] = conflict.Existing
			}
			c.JSON(http.StatusConflict, body)
			return
		}
		s.log.Error("request handling failed",
			zap.String("request_id", c.GetString("request_id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *Server) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
