package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quest-api/internal/handler/dto"
	"github.com/yourusername/quest-api/internal/service"
)

// ModerationHandler обрабатывает очередь модерации пруфов
type ModerationHandler struct {
	proofService *service.ProofService
}

// NewModerationHandler создает новый обработчик модерации
func NewModerationHandler(proofService *service.ProofService) *ModerationHandler {
	return &ModerationHandler{proofService: proofService}
}

// ListPending возвращает очередь модерации в порядке поступления
// GET /api/admin/proofs/pending
func (h *ModerationHandler) ListPending(c *gin.Context) {
	rows, err := h.proofService.ListPending()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": rows, "count": len(rows)})
}

// Approve зачитывает пруф
// POST /api/admin/proofs/:id/approve
func (h *ModerationHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// Reject отклоняет пруф
// POST /api/admin/proofs/:id/reject
func (h *ModerationHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *ModerationHandler) decide(c *gin.Context, approve bool) {
	proofID := c.MustGet("proofID").(uint)

	// Заметка модератора опциональна, тело может отсутствовать
	var req dto.DecideRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.proofService.Decide(proofID, approve, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
