package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geocell/team-service/internal/domain/entity"
)

func TestTransferOwnership(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*env, *entity.Team) {
		e := newEnv()
		team := mustCreateTeam(t, e, testActor, "cartography")
		mustAddMember(t, e, testActor, team.ID, "u1", entity.RoleOwner)
		mustAddMember(t, e, actorFor("u1"), team.ID, "u2", entity.RoleMember)
		return e, team
	}

	t.Run("roles swap atomically", func(t *testing.T) {
		e, team := setup(t)

		err := e.member.TransferOwnership(ctx, actorFor("u1"), team.ID, "u1", "u2")
		require.NoError(t, err)

		previous, err := e.member.GetMember(ctx, team.ID, "u1")
		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, previous.PrimaryRole)

		next, err := e.member.GetMember(ctx, team.ID, "u2")
		require.NoError(t, err)
		assert.Equal(t, entity.RoleOwner, next.PrimaryRole)

		// Ровно один владелец
		owners, err := e.members.ListByPrimaryRole(ctx, team.ID, entity.RoleOwner)
		require.NoError(t, err)
		assert.Len(t, owners, 1)
	})

	t.Run("both role changes audited against the team", func(t *testing.T) {
		e, team := setup(t)

		err := e.member.TransferOwnership(ctx, actorFor("u1"), team.ID, "u1", "u2")
		require.NoError(t, err)

		entries := e.auditEntries(entity.AuditFilter{
			ActionType: entity.ActionRoleChange,
			ResourceID: team.ID,
		})
		require.Len(t, entries, 2)

		demotion, promotion := entries[0], entries[1]
		assert.True(t, demotion.Success)
		assert.True(t, promotion.Success)
		assert.Equal(t, entity.ResourceTeam, demotion.ResourceType)
		assert.Equal(t, "u1", demotion.Details["user_id"])
		assert.Equal(t, string(entity.RoleAdmin), demotion.Details["to"])
		assert.Equal(t, "u2", promotion.Details["user_id"])
		assert.Equal(t, string(entity.RoleMember), promotion.Details["from"])
		assert.Equal(t, string(entity.RoleOwner), promotion.Details["to"])
	})

	t.Run("non-owner cannot transfer", func(t *testing.T) {
		e, team := setup(t)

		err := e.member.TransferOwnership(ctx, actorFor("u2"), team.ID, "u2", "u1")
		requireCode(t, err, "UNAUTHORIZED")
	})

	t.Run("ownership checked before new owner state", func(t *testing.T) {
		e, team := setup(t)

		// u2 не владелец, а ghost вообще не участник: первична проверка владения
		err := e.member.TransferOwnership(ctx, actorFor("u2"), team.ID, "u2", "ghost")
		requireCode(t, err, "UNAUTHORIZED")
	})

	t.Run("new owner must be a member", func(t *testing.T) {
		e, team := setup(t)

		err := e.member.TransferOwnership(ctx, actorFor("u1"), team.ID, "u1", "ghost")
		requireCode(t, err, "NOT_FOUND")
	})

	t.Run("self transfer rejected", func(t *testing.T) {
		e, team := setup(t)

		err := e.member.TransferOwnership(ctx, actorFor("u1"), team.ID, "u1", "u1")
		requireCode(t, err, "INVALID_OPERATION")
	})

	t.Run("inactive new owner rejected", func(t *testing.T) {
		e, team := setup(t)

		_, err := e.member.DeactivateMember(ctx, actorFor("u1"), team.ID, "u2")
		require.NoError(t, err)

		err = e.member.TransferOwnership(ctx, actorFor("u1"), team.ID, "u1", "u2")
		requireCode(t, err, "INVALID_OPERATION")
	})

	t.Run("concurrent change rolls back both updates", func(t *testing.T) {
		e, team := setup(t)

		// Конкурентный писатель успел изменить запись нового владельца
		e.members.conflictOn = "u2"

		err := e.member.TransferOwnership(ctx, actorFor("u1"), team.ID, "u1", "u2")
		requireCode(t, err, "CONFLICT")

		// Ни одна из двух записей не изменилась
		previous, err := e.member.GetMember(ctx, team.ID, "u1")
		require.NoError(t, err)
		assert.Equal(t, entity.RoleOwner, previous.PrimaryRole)

		next, err := e.member.GetMember(ctx, team.ID, "u2")
		require.NoError(t, err)
		assert.Equal(t, entity.RoleMember, next.PrimaryRole)

		// Успешных записей о передаче нет, есть запись об отказе
		entries := e.auditEntries(entity.AuditFilter{
			ActionType: entity.ActionRoleChange,
			ResourceID: team.ID,
		})
		require.Len(t, entries, 1)
		assert.False(t, entries[0].Success)
	})

	t.Run("missing team", func(t *testing.T) {
		e, _ := setup(t)

		err := e.member.TransferOwnership(ctx, actorFor("u1"), "missing", "u1", "u2")
		requireCode(t, err, "NOT_FOUND")
	})
}

// Сквозной сценарий жизненного цикла команды: создание, первый владелец,
// рядовой участник, передача владения и проверка следа в журнале.
func TestTeamLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	creator := actorFor("founder")

	team, err := e.team.CreateTeam(ctx, creator, "Cartography", "map pipeline team",
		map[string]string{entity.SettingMaxMembers: "5"})
	require.NoError(t, err)

	mustAddMember(t, e, creator, team.ID, "u1", entity.RoleOwner)
	mustAddMember(t, e, actorFor("u1"), team.ID, "u2", entity.RoleMember)

	// Создатель больше не управляет командой
	_, err = e.member.AddMember(ctx, creator, team.ID, &entity.TeamMember{
		UserID: "u3", Email: "u3@geocell.example",
	})
	requireCode(t, err, "UNAUTHORIZED")

	err = e.member.TransferOwnership(ctx, actorFor("u1"), team.ID, "u1", "u2")
	require.NoError(t, err)

	u1, err := e.member.GetMember(ctx, team.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u1.PrimaryRole)

	u2, err := e.member.GetMember(ctx, team.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOwner, u2.PrimaryRole)

	// Бывший владелец остался админом и может управлять командой
	mustAddMember(t, e, actorFor("u1"), team.ID, "u3", entity.RoleViewer)

	transfers := e.auditEntries(entity.AuditFilter{
		ActionType: entity.ActionRoleChange,
		ResourceID: team.ID,
	})
	require.Len(t, transfers, 2)
	for _, entry := range transfers {
		assert.True(t, entry.Success)
		assert.Equal(t, "u1", entry.UserID)
	}
}
