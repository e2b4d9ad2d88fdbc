package entity

import (
	"strconv"
	"time"
)

// SettingMaxMembers ключ настройки команды с лимитом участников
const SettingMaxMembers = "max_members"

// Team представляет команду
type Team struct {
	ID          string
	Name        string
	Description string
	Settings    map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   string
	UpdatedBy   string
	Version     int64
}

// MaxMembers возвращает лимит участников команды (0, если лимит не задан)
func (t *Team) MaxMembers() int {
	raw, ok := t.Settings[SettingMaxMembers]
	if !ok {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0
	}
	return limit
}
