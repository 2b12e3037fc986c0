package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/yourusername/quest-api/internal/domain/entity"
	"github.com/yourusername/quest-api/internal/domain/repository"
	apperrors "github.com/yourusername/quest-api/internal/pkg/errors"
)

var phoneJunkPattern = regexp.MustCompile(`[^\d+]`)

// NormalizePhone приводит телефон к каноническому виду +7XXXXXXXXXX.
// Ведущая «8» в 11-значном номере заменяется на «+7»; «7XXXXXXXXXX»
// без плюса получает его. Всё остальное возвращается как есть,
// очищенное от мусорных символов.
func NormalizePhone(s string) string {
	s = phoneJunkPattern.ReplaceAllString(strings.TrimSpace(s), "")
	if strings.HasPrefix(s, "8") && len(s) == 11 {
		s = "+7" + s[1:]
	}
	if len(s) == 11 && s[0] == '7' && !strings.Contains(s, "+") {
		s = "+" + s
	}
	return s
}

// RegisterResult — итог регистрации: участник и его команда.
type RegisterResult struct {
	UserID   uint   `json:"user_id"`
	TeamID   uint   `json:"team_id"`
	TeamName string `json:"team_name"`
}

// ImportReport — отчет о загрузке списка допуска.
type ImportReport struct {
	Total   int `json:"total"`
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
}

// RouteAssigner назначает маршрут команде. Реализуется RouteService;
// регистрации важно только само назначение при заполнении команды.
type RouteAssigner interface {
	AssignBalanced(teamID uint) (*entity.Route, error)
}

// RegistrationService отвечает за регистрацию участников и линейное
// наполнение команд.
type RegistrationService struct {
	userRepo   repository.UserRepository
	teamRepo   repository.TeamRepository
	memberRepo repository.MemberRepository
	routes     RouteAssigner
	teamSize   int
}

// NewRegistrationService создает новый сервис регистрации
func NewRegistrationService(
	userRepo repository.UserRepository,
	teamRepo repository.TeamRepository,
	memberRepo repository.MemberRepository,
	routes RouteAssigner,
	teamSize int,
) *RegistrationService {
	return &RegistrationService{
		userRepo:   userRepo,
		teamRepo:   teamRepo,
		memberRepo: memberRepo,
		routes:     routes,
		teamSize:   teamSize,
	}
}

// Register регистрирует участника по телефону и имени и линейно
// помещает его в самую раннюю незаполненную команду. Повторная
// регистрация идемпотентна: участник остается в своей команде.
func (s *RegistrationService) Register(tgID, phone, firstName string) (*RegisterResult, error) {
	phone = NormalizePhone(phone)
	firstName = strings.TrimSpace(firstName)
	if tgID == "" || phone == "" || firstName == "" {
		return nil, fmt.Errorf("%w: tg_id, phone and first_name are required", apperrors.ErrValidation)
	}

	user, err := s.findOrCreateUser(tgID, phone, firstName)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetByUserID(user.ID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	var team *entity.Team
	if member != nil {
		team, err = s.teamRepo.GetByID(member.TeamID)
		if err != nil {
			return nil, err
		}
	} else {
		team, err = s.nextOpenTeam()
		if err != nil {
			return nil, err
		}
		if err := s.memberRepo.Create(&entity.TeamMember{
			TeamID: team.ID,
			UserID: user.ID,
			Role:   entity.RolePlayer,
		}); err != nil {
			return nil, err
		}
		log.Printf("[RegistrationService] Участник %d добавлен в команду %d (%s)", user.ID, team.ID, team.Name)

		if err := s.promoteCaptainIfFull(team.ID); err != nil {
			return nil, err
		}
	}

	return &RegisterResult{
		UserID:   user.ID,
		TeamID:   team.ID,
		TeamName: team.Name,
	}, nil
}

// findOrCreateUser ищет участника сначала по telegram id, затем по
// телефону (связывая реальный tg_id с импортированной записью) и
// создает нового, если не нашел.
func (s *RegistrationService) findOrCreateUser(tgID, phone, firstName string) (*entity.User, error) {
	user, err := s.userRepo.GetByTgID(tgID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user, err = s.userRepo.GetByPhone(phone)
	if err == nil {
		// Импортированная запись или смена аккаунта: связываем tg_id
		user.TgID = tgID
		user.FirstName = firstName
		if user.LastName == "" {
			user.LastName = firstName
		}
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user = &entity.User{
		TgID:      tgID,
		Phone:     phone,
		FirstName: firstName,
		LastName:  firstName,
		IsActive:  true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// nextOpenTeam возвращает самую раннюю (по id) незаполненную открытую
// команду. Если все полные — создает новую «Команда №N».
func (s *RegistrationService) nextOpenTeam() (*entity.Team, error) {
	teams, err := s.teamRepo.ListUnlocked()
	if err != nil {
		return nil, err
	}
	for i := range teams {
		count, err := s.memberRepo.CountByTeam(teams[i].ID)
		if err != nil {
			return nil, err
		}
		if count < int64(s.teamSize) {
			return &teams[i], nil
		}
	}

	// Все полные — создаем новую, подбирая свободный номер
	total, err := s.teamRepo.Count()
	if err != nil {
		return nil, err
	}
	n := int(total) + 1
	for {
		name := entity.DefaultTeamName(n)
		_, err := s.teamRepo.GetByName(name)
		if errors.Is(err, apperrors.ErrNotFound) {
			team := &entity.Team{Name: name, CanRename: true}
			if err := s.teamRepo.Create(team); err != nil {
				return nil, err
			}
			log.Printf("[RegistrationService] Создана новая команда %d (%s)", team.ID, team.Name)
			return team, nil
		}
		if err != nil {
			return nil, err
		}
		n++
	}
}

// promoteCaptainIfFull назначает капитаном самого раннего участника
// (по id членства), когда команда достигает целевого размера и
// капитана еще нет.
func (s *RegistrationService) promoteCaptainIfFull(teamID uint) error {
	members, err := s.memberRepo.ListByTeam(teamID)
	if err != nil {
		return err
	}
	if len(members) < s.teamSize {
		return nil
	}
	for i := range members {
		if members[i].IsCaptain() {
			return nil
		}
	}
	if err := s.memberRepo.SetCaptain(teamID, members[0].ID); err != nil {
		return err
	}
	log.Printf("[RegistrationService] Команда %d полная, капитаном назначен участник %d", teamID, members[0].UserID)

	// Полной команде сразу назначается маршрут. Если пригодных маршрутов
	// еще нет, назначение повторится при старте.
	if s.routes != nil {
		if _, err := s.routes.AssignBalanced(teamID); err != nil {
			log.Printf("[RegistrationService] Не удалось назначить маршрут команде %d: %v", teamID, err)
		}
	}
	return nil
}

// ImportParticipants загружает CSV списка допуска (столбцы phone,
// first_name). Уже известные телефоны пропускаются; новые участники
// создаются с заглушкой pending:<phone> вместо telegram id.
func (s *RegistrationService) ImportParticipants(r io.Reader) (*ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header", apperrors.ErrValidation)
	}
	phoneIdx, nameIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.ToLower(col)) {
		case "phone":
			phoneIdx = i
		case "first_name":
			nameIdx = i
		}
	}
	if phoneIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("%w: CSV must have phone and first_name columns", apperrors.ErrValidation)
	}

	report := &ImportReport{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed CSV row", apperrors.ErrValidation)
		}
		report.Total++

		if phoneIdx >= len(record) || nameIdx >= len(record) {
			report.Skipped++
			continue
		}
		phone := NormalizePhone(record[phoneIdx])
		firstName := strings.TrimSpace(record[nameIdx])
		if phone == "" || firstName == "" {
			report.Skipped++
			continue
		}

		_, err = s.userRepo.GetByPhone(phone)
		if err == nil {
			report.Skipped++
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}

		if err := s.userRepo.Create(&entity.User{
			TgID:      entity.PendingTgPrefix + phone,
			Phone:     phone,
			FirstName: firstName,
			LastName:  firstName,
			IsActive:  true,
		}); err != nil {
			return nil, err
		}
		report.Loaded++
	}

	log.Printf("[RegistrationService] Импорт списка допуска: всего %d, загружено %d, пропущено %d",
		report.Total, report.Loaded, report.Skipped)
	return report, nil
}
