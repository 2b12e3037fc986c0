package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quest-api/internal/service"
)

// LeaderboardHandler обрабатывает таблицу лидеров и ее экспорт
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

// NewLeaderboardHandler создает новый обработчик таблицы лидеров
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// Get возвращает таблицу лидеров (кешированный снапшот)
// GET /api/leaderboard
func (h *LeaderboardHandler) Get(c *gin.Context) {
	rows, err := h.leaderboardService.Snapshot()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": rows})
}

// Export выгружает таблицу лидеров в XLSX
// GET /api/admin/leaderboard/export
func (h *LeaderboardHandler) Export(c *gin.Context) {
	rows, err := h.leaderboardService.Build()
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("leaderboard_%s", time.Now().Format("2006-01-02_15-04"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Лидерборд"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[LeaderboardHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Место", "Команда", "Статус", "Зачтено", "Всего", "Время (сек)", "Старт", "Финиш"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[LeaderboardHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		rowNum := i + 2 // 1 строка — заголовки
		cell := fmt.Sprintf("A%d", rowNum)

		started := ""
		if r.StartedAt != nil {
			started = r.StartedAt.Format(time.RFC3339)
		}
		finished := ""
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format(time.RFC3339)
		}

		row := []interface{}{r.Rank, sanitizeForExcel(r.TeamName), translateState(r.State), r.Done, r.Total, r.ElapsedSec, started, finished}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[LeaderboardHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[LeaderboardHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[LeaderboardHandler] Ошибка записи Excel в response: %v", err)
	}
}

// translateState переводит статус прохождения для выгрузки
func translateState(state string) string {
	switch state {
	case "finished":
		return "Финишировала"
	case "in_progress":
		return "На маршруте"
	case "ready":
		return "Готова к старту"
	default:
		return "Не стартовала"
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
