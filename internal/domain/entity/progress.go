package entity

// Состояния прохождения маршрута командой
const (
	StateUnassigned = "unassigned"  // маршрут не назначен
	StateReady      = "ready"       // маршрут назначен, квест не начат
	StateInProgress = "in_progress" // команда на чекпойнте Seq
	StateFinished   = "finished"    // маршрут пройден
)

// Progress — явное состояние машины прохождения.
// Seq имеет смысл только в состоянии in_progress (1-based номер чекпойнта).
type Progress struct {
	State string
	Seq   int
}

// IsFinished проверяет, что маршрут пройден.
func (p Progress) IsFinished() bool {
	return p.State == StateFinished
}

// IsStarted проверяет, что квест начат и ещё не завершён.
func (p Progress) IsStarted() bool {
	return p.State == StateInProgress
}

// CanStart проверяет, что команда готова к старту.
func (p Progress) CanStart() bool {
	return p.State == StateReady
}
