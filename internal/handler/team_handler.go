package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quest-api/internal/handler/dto"
	"github.com/yourusername/quest-api/internal/service"
)

// TeamHandler обрабатывает командные операции: переименование и
// административное управление составами.
type TeamHandler struct {
	teamService *service.TeamService
}

// NewTeamHandler создает новый обработчик команд
func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// Rename обрабатывает одноразовое переименование команды капитаном
// POST /api/teams/rename
func (h *TeamHandler) Rename(c *gin.Context) {
	var req dto.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tg_id and new_name are required"})
		return
	}

	team, err := h.teamService.Rename(req.TgID, req.NewName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"team_id":   team.ID,
		"team_name": team.Name,
		"renamed":   true,
	})
}

// ListTeams возвращает все команды с составами
// GET /api/admin/teams
func (h *TeamHandler) ListTeams(c *gin.Context) {
	rosters, err := h.teamService.ListRosters()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": rosters})
}

// LockAll закрывает набор во все команды
// POST /api/admin/teams/lock
func (h *TeamHandler) LockAll(c *gin.Context) {
	if err := h.teamService.SetLockedAll(true); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "locked": true})
}

// UnlockAll открывает набор во все команды
// POST /api/admin/teams/unlock
func (h *TeamHandler) UnlockAll(c *gin.Context) {
	if err := h.teamService.SetLockedAll(false); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "locked": false})
}

// SetCaptain назначает капитана команды
// POST /api/admin/teams/:id/captain
func (h *TeamHandler) SetCaptain(c *gin.Context) {
	teamID := c.MustGet("teamID").(uint)

	var req dto.SetCaptainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	if err := h.teamService.SetCaptain(teamID, req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UnsetCaptain снимает капитана команды
// DELETE /api/admin/teams/:id/captain
func (h *TeamHandler) UnsetCaptain(c *gin.Context) {
	teamID := c.MustGet("teamID").(uint)

	if err := h.teamService.UnsetCaptain(teamID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// MoveMember переводит участника в другую команду
// POST /api/admin/members/move
func (h *TeamHandler) MoveMember(c *gin.Context) {
	var req dto.MoveMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and dest_team_id are required"})
		return
	}

	if err := h.teamService.MoveMember(req.UserID, req.DestTeamID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
