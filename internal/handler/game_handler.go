package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quest-api/internal/handler/dto"
	"github.com/yourusername/quest-api/internal/service"
)

// GameHandler обрабатывает игровые операции: старт, текущий чекпойнт,
// отправку пруфов и сброс.
type GameHandler struct {
	gameService        *service.GameService
	proofService       *service.ProofService
	teamService        *service.TeamService
	leaderboardService *service.LeaderboardService
}

// NewGameHandler создает новый игровой обработчик
func NewGameHandler(
	gameService *service.GameService,
	proofService *service.ProofService,
	teamService *service.TeamService,
	leaderboardService *service.LeaderboardService,
) *GameHandler {
	return &GameHandler{
		gameService:        gameService,
		proofService:       proofService,
		teamService:        teamService,
		leaderboardService: leaderboardService,
	}
}

// Start запускает прохождение квеста (капитан)
// POST /api/game/start
func (h *GameHandler) Start(c *gin.Context) {
	var req dto.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tg_id is required"})
		return
	}

	result, err := h.gameService.Start(req.TgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CurrentByTg возвращает текущий чекпойнт команды участника
// GET /api/game/current/by-tg/:tg_id
func (h *GameHandler) CurrentByTg(c *gin.Context) {
	team, _, err := h.teamService.TeamByTg(c.Param("tg_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.gameService.Summary(team.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"finished":   summary.FinishedAt != nil,
		"state":      summary.State,
		"done":       summary.Done,
		"total":      summary.Total,
		"checkpoint": summary.Current,
	})
}

// Summary возвращает сводку прохождения команды
// GET /api/game/summary/:id
func (h *GameHandler) Summary(c *gin.Context) {
	teamID := c.MustGet("teamID").(uint)

	summary, err := h.gameService.Summary(teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SubmitProof принимает фотоподтверждение по telegram file id
// POST /api/game/photo
func (h *GameHandler) SubmitProof(c *gin.Context) {
	var req dto.SubmitProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tg_id and tg_file_id are required"})
		return
	}

	result, err := h.proofService.Submit(req.TgID, req.FileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SubmitProofFile принимает фотоподтверждение файлом (multipart)
// POST /api/game/submit-photo
func (h *GameHandler) SubmitProofFile(c *gin.Context) {
	tgID := c.PostForm("tg_id")
	if tgID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tg_id is required"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer f.Close()

	fileID, err := h.proofService.SavePhoto(fileHeader.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.proofService.Submit(tgID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResetProgress сбрасывает игровой прогресс всех команд
// POST /api/admin/reset
func (h *GameHandler) ResetProgress(c *gin.Context) {
	if err := h.gameService.ResetProgress(); err != nil {
		respondError(c, err)
		return
	}
	h.leaderboardService.Invalidate()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
