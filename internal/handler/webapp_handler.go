package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quest-api/internal/handler/dto"
	"github.com/yourusername/quest-api/internal/service"
	"github.com/yourusername/quest-api/pkg/auth"
)

// WebAppHandler обрабатывает JSON API мини-приложения. Каждый запрос
// несет подписанную строку initData; подпись проверяется до любых
// обращений к данным.
type WebAppHandler struct {
	verifier           *auth.InitDataVerifier
	teamService        *service.TeamService
	gameService        *service.GameService
	leaderboardService *service.LeaderboardService
}

// NewWebAppHandler создает новый обработчик мини-приложения
func NewWebAppHandler(
	verifier *auth.InitDataVerifier,
	teamService *service.TeamService,
	gameService *service.GameService,
	leaderboardService *service.LeaderboardService,
) *WebAppHandler {
	return &WebAppHandler{
		verifier:           verifier,
		teamService:        teamService,
		gameService:        gameService,
		leaderboardService: leaderboardService,
	}
}

// verify проверяет подпись initData и возвращает telegram id вызывающего
func (h *WebAppHandler) verify(c *gin.Context) (string, bool) {
	var req dto.WebAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data is required"})
		return "", false
	}
	user, err := h.verifier.Verify(req.InitData)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid init data"})
		return "", false
	}
	return strconv.FormatInt(user.ID, 10), true
}

// Summary возвращает сводку команды вызывающего
// POST /api/webapp/summary
func (h *WebAppHandler) Summary(c *gin.Context) {
	tgID, ok := h.verify(c)
	if !ok {
		return
	}

	team, member, err := h.teamService.TeamByTg(tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.gameService.Summary(team.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	roster, err := h.teamService.Roster(team.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":    summary,
		"roster":     roster,
		"is_captain": member.IsCaptain(),
	})
}

// Start стартует квест из мини-приложения (капитан)
// POST /api/webapp/start
func (h *WebAppHandler) Start(c *gin.Context) {
	tgID, ok := h.verify(c)
	if !ok {
		return
	}

	result, err := h.gameService.Start(tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Leaderboard возвращает таблицу лидеров для мини-приложения
// POST /api/webapp/leaderboard
func (h *WebAppHandler) Leaderboard(c *gin.Context) {
	if _, ok := h.verify(c); !ok {
		return
	}

	rows, err := h.leaderboardService.Snapshot()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": rows})
}
