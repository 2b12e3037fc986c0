package dto

// RegisterRequest — регистрация участника ботом
type RegisterRequest struct {
	TgID      string `json:"tg_id" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
}

// RenameRequest — одноразовое переименование команды капитаном
type RenameRequest struct {
	TgID    string `json:"tg_id" binding:"required"`
	NewName string `json:"new_name" binding:"required"`
}

// StartRequest — старт квеста капитаном
type StartRequest struct {
	TgID string `json:"tg_id" binding:"required"`
}

// SubmitProofRequest — отправка фотоподтверждения по telegram file id
type SubmitProofRequest struct {
	TgID   string `json:"tg_id" binding:"required"`
	FileID string `json:"tg_file_id" binding:"required"`
}

// DecideRequest — решение модератора по пруфу
type DecideRequest struct {
	Note string `json:"note"`
}

// RouteRequest — создание/обновление маршрута
type RouteRequest struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// CheckpointRequest — создание/обновление чекпойнта
type CheckpointRequest struct {
	Title     string `json:"title"`
	Riddle    string `json:"riddle"`
	PhotoHint string `json:"photo_hint"`
}

// AssignRouteRequest — ручное назначение маршрута команде
type AssignRouteRequest struct {
	RouteID uint `json:"route_id" binding:"required"`
}

// SetCaptainRequest — назначение капитана команды
type SetCaptainRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// MoveMemberRequest — перевод участника в другую команду
type MoveMemberRequest struct {
	UserID     uint `json:"user_id" binding:"required"`
	DestTeamID uint `json:"dest_team_id" binding:"required"`
}

// WebAppRequest — запрос из мини-приложения с подписанной строкой initData
type WebAppRequest struct {
	InitData string `json:"init_data" binding:"required"`
}
