package dto_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/geocell/team-service/internal/domain/entity"
	"github.com/geocell/team-service/internal/transport/http/dto"
)

func TestToTeamDTO(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	team := &entity.Team{
		ID:        "t1",
		Name:      "platform",
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: "u1",
		Version:   3,
	}

	result := dto.ToTeamDTO(team)

	assert.Equal(t, "t1", result.ID)
	assert.Equal(t, "2025-03-14T12:00:00Z", result.CreatedAt)
	assert.Equal(t, int64(3), result.Version)
	// nil настройки сериализуются как пустой объект, а не null
	assert.NotNil(t, result.Settings)
	assert.Empty(t, result.Settings)
}

func TestToMemberDTO(t *testing.T) {
	lastLogin := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	member := &entity.TeamMember{
		ID:              "m1",
		UserID:          "u1",
		Email:           "u1@geocell.example",
		TeamID:          "t1",
		PrimaryRole:     entity.RoleAdmin,
		AdditionalRoles: []entity.Role{entity.RoleEditor},
		IsActive:        true,
		LastLogin:       &lastLogin,
	}

	result := dto.ToMemberDTO(member)

	assert.Equal(t, "ADMIN", result.PrimaryRole)
	assert.Equal(t, []string{"EDITOR"}, result.AdditionalRoles)
	assert.NotNil(t, result.Permissions)
	assert.Empty(t, result.Permissions)
	if assert.NotNil(t, result.LastLogin) {
		assert.Equal(t, "2025-03-14T09:30:00Z", *result.LastLogin)
	}
}

func TestToMemberDTONoLastLogin(t *testing.T) {
	member := &entity.TeamMember{ID: "m1", UserID: "u1", PrimaryRole: entity.RoleMember}

	result := dto.ToMemberDTO(member)

	assert.Nil(t, result.LastLogin)
	assert.NotNil(t, result.AdditionalRoles)
	assert.Empty(t, result.AdditionalRoles)
}

func TestToMemberEntity(t *testing.T) {
	req := &dto.AddMemberRequest{
		UserID:      "u1",
		Email:       "u1@geocell.example",
		FirstName:   "Ivan",
		PrimaryRole: "EDITOR",
	}

	member := dto.ToMemberEntity(req)

	assert.Equal(t, "u1", member.UserID)
	assert.Equal(t, entity.RoleEditor, member.PrimaryRole)
	assert.Empty(t, member.TeamID)
}

func TestToAuditLogDTO(t *testing.T) {
	entry := &entity.AuditLog{
		ID:           "a1",
		UserID:       "u1",
		ActionType:   entity.ActionRoleChange,
		ResourceType: entity.ResourceTeam,
		ResourceID:   "t1",
		Success:      true,
		Timestamp:    time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	result := dto.ToAuditLogDTO(entry)

	assert.Equal(t, "ROLE_CHANGE", result.ActionType)
	assert.Equal(t, "TEAM", result.ResourceType)
	assert.Equal(t, "2025-03-14T12:00:00Z", result.Timestamp)
	assert.NotNil(t, result.Details)
	assert.Empty(t, result.Details)
}
