package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quest-api/internal/handler/dto"
	"github.com/yourusername/quest-api/internal/service"
)

// RouteHandler обрабатывает справочник маршрутов и назначение
// маршрутов командам (админская поверхность).
type RouteHandler struct {
	routeService *service.RouteService
}

// NewRouteHandler создает новый обработчик маршрутов
func NewRouteHandler(routeService *service.RouteService) *RouteHandler {
	return &RouteHandler{routeService: routeService}
}

// List возвращает все маршруты с чекпойнтами
// GET /api/admin/routes
func (h *RouteHandler) List(c *gin.Context) {
	routes, err := h.routeService.ListRoutes()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// Create создает маршрут
// POST /api/admin/routes
func (h *RouteHandler) Create(c *gin.Context) {
	var req dto.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	route, err := h.routeService.CreateRoute(req.Code, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

// Update обновляет название маршрута
// PUT /api/admin/routes/:id
func (h *RouteHandler) Update(c *gin.Context) {
	routeID := c.MustGet("routeID").(uint)

	var req dto.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	route, err := h.routeService.UpdateRoute(routeID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// Delete удаляет маршрут без назначенных команд
// DELETE /api/admin/routes/:id
func (h *RouteHandler) Delete(c *gin.Context) {
	routeID := c.MustGet("routeID").(uint)

	if err := h.routeService.DeleteRoute(routeID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Get возвращает маршрут с чекпойнтами
// GET /api/admin/routes/:id
func (h *RouteHandler) Get(c *gin.Context) {
	routeID := c.MustGet("routeID").(uint)

	route, err := h.routeService.GetRoute(routeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// AddCheckpoint добавляет чекпойнт в хвост маршрута
// POST /api/admin/routes/:id/checkpoints
func (h *RouteHandler) AddCheckpoint(c *gin.Context) {
	routeID := c.MustGet("routeID").(uint)

	var req dto.CheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cp, err := h.routeService.AddCheckpoint(routeID, req.Title, req.Riddle, req.PhotoHint)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cp)
}

// UpdateCheckpoint обновляет содержимое чекпойнта
// PUT /api/admin/checkpoints/:id
func (h *RouteHandler) UpdateCheckpoint(c *gin.Context) {
	cpID := c.MustGet("checkpointID").(uint)

	var req dto.CheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cp, err := h.routeService.UpdateCheckpoint(cpID, req.Title, req.Riddle, req.PhotoHint)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

// RemoveCheckpoint удаляет последний чекпойнт маршрута
// DELETE /api/admin/checkpoints/:id
func (h *RouteHandler) RemoveCheckpoint(c *gin.Context) {
	cpID := c.MustGet("checkpointID").(uint)

	if err := h.routeService.RemoveCheckpoint(cpID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AssignRoute вручную назначает маршрут команде
// POST /api/admin/teams/:id/route
func (h *RouteHandler) AssignRoute(c *gin.Context) {
	teamID := c.MustGet("teamID").(uint)

	var req dto.AssignRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "route_id is required"})
		return
	}

	route, err := h.routeService.AssignSpecific(teamID, req.RouteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "route": route})
}
