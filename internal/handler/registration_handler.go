package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quest-api/internal/handler/dto"
	"github.com/yourusername/quest-api/internal/service"
)

// RegistrationHandler обрабатывает регистрацию участников и запросы
// бота о командах.
type RegistrationHandler struct {
	registrationService *service.RegistrationService
	teamService         *service.TeamService
}

// NewRegistrationHandler создает новый обработчик регистрации
func NewRegistrationHandler(
	registrationService *service.RegistrationService,
	teamService *service.TeamService,
) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
		teamService:         teamService,
	}
}

// Register обрабатывает регистрацию участника
// POST /api/users/register
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tg_id, phone and first_name are required"})
		return
	}

	result, err := h.registrationService.Register(req.TgID, req.Phone, req.FirstName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ImportParticipants загружает CSV списка допуска
// POST /api/participants/import
func (h *RegistrationHandler) ImportParticipants(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer f.Close()

	report, err := h.registrationService.ImportParticipants(f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// TeamByTg возвращает команду участника
// GET /api/teams/by-tg/:tg_id
func (h *RegistrationHandler) TeamByTg(c *gin.Context) {
	team, member, err := h.teamService.TeamByTg(c.Param("tg_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"team_id":    team.ID,
		"team_name":  team.Name,
		"role":       member.Role,
		"is_captain": member.IsCaptain(),
		"route_id":   team.RouteID,
	})
}

// RosterByTg возвращает состав команды участника
// GET /api/teams/roster/by-tg/:tg_id
func (h *RegistrationHandler) RosterByTg(c *gin.Context) {
	roster, err := h.teamService.RosterByTg(c.Param("tg_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}
