package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geocell/team-service/internal/domain/entity"
)

func TestCreateTeam(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		e := newEnv()

		team, err := e.team.CreateTeam(context.Background(), testActor, "platform", "infra team",
			map[string]string{entity.SettingMaxMembers: "10"})
		require.NoError(t, err)

		assert.NotEmpty(t, team.ID)
		assert.Equal(t, "platform", team.Name)
		assert.Equal(t, "infra team", team.Description)
		assert.Equal(t, testActor.UserID, team.CreatedBy)
		assert.Equal(t, int64(0), team.Version)
		assert.Equal(t, 10, team.MaxMembers())

		entries := e.auditEntries(entity.AuditFilter{ActionType: entity.ActionCreate, ResourceID: team.ID})
		require.Len(t, entries, 1)
		assert.True(t, entries[0].Success)
		assert.Equal(t, entity.ResourceTeam, entries[0].ResourceType)
		assert.Equal(t, testActor.UserID, entries[0].UserID)
		assert.Equal(t, "platform", entries[0].Details["name"])
	})

	t.Run("empty name rejected", func(t *testing.T) {
		e := newEnv()

		_, err := e.team.CreateTeam(context.Background(), testActor, "", "", nil)
		requireCode(t, err, "INVALID_INPUT")
	})

	t.Run("duplicate name rejected and failure audited", func(t *testing.T) {
		e := newEnv()
		mustCreateTeam(t, e, testActor, "platform")

		_, err := e.team.CreateTeam(context.Background(), testActor, "platform", "second", nil)
		requireCode(t, err, "TEAM_EXISTS")

		// Только одна команда с этим именем
		teams, err := e.team.ListTeams(context.Background())
		require.NoError(t, err)
		assert.Len(t, teams, 1)

		failed := false
		entries := e.auditEntries(entity.AuditFilter{ActionType: entity.ActionCreate})
		for _, entry := range entries {
			if !entry.Success {
				failed = true
				assert.Equal(t, "platform", entry.ResourceID)
				assert.Contains(t, entry.Details["error"], "team name already exists")
			}
		}
		assert.True(t, failed, "expected a failure audit entry")
	})
}

func TestGetTeam(t *testing.T) {
	e := newEnv()
	team := mustCreateTeam(t, e, testActor, "platform")

	t.Run("by id", func(t *testing.T) {
		got, err := e.team.GetTeam(context.Background(), team.ID)
		require.NoError(t, err)
		assert.Equal(t, team.Name, got.Name)
	})

	t.Run("by name", func(t *testing.T) {
		got, err := e.team.GetTeamByName(context.Background(), "platform")
		require.NoError(t, err)
		assert.Equal(t, team.ID, got.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := e.team.GetTeam(context.Background(), "missing")
		requireCode(t, err, "NOT_FOUND")
	})
}

func TestSearchTeams(t *testing.T) {
	e := newEnv()
	mustCreateTeam(t, e, testActor, "platform-core")
	mustCreateTeam(t, e, testActor, "platform-edge")
	mustCreateTeam(t, e, actorFor("other"), "billing")

	t.Run("by name substring", func(t *testing.T) {
		teams, err := e.team.SearchTeamsByName(context.Background(), "platform")
		require.NoError(t, err)
		assert.Len(t, teams, 2)
	})

	t.Run("by creator", func(t *testing.T) {
		teams, err := e.team.GetTeamsCreatedBy(context.Background(), "other")
		require.NoError(t, err)
		require.Len(t, teams, 1)
		assert.Equal(t, "billing", teams[0].Name)
	})

	t.Run("no matches is empty slice", func(t *testing.T) {
		teams, err := e.team.SearchTeamsByName(context.Background(), "payments")
		require.NoError(t, err)
		assert.NotNil(t, teams)
		assert.Empty(t, teams)
	})
}

func TestUpdateTeam(t *testing.T) {
	t.Run("creator updates before owner exists", func(t *testing.T) {
		e := newEnv()
		team := mustCreateTeam(t, e, testActor, "platform")

		updated, err := e.team.UpdateTeam(context.Background(), testActor, team.ID, "new description")
		require.NoError(t, err)
		assert.Equal(t, "new description", updated.Description)
		assert.Equal(t, int64(1), updated.Version)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		e := newEnv()
		team := mustCreateTeam(t, e, testActor, "platform")

		_, err := e.team.UpdateTeam(context.Background(), actorFor("stranger"), team.ID, "hijacked")
		requireCode(t, err, "UNAUTHORIZED")

		got, err := e.team.GetTeam(context.Background(), team.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Description)
	})

	t.Run("creator loses control once owner exists", func(t *testing.T) {
		e := newEnv()
		team := mustCreateTeam(t, e, testActor, "platform")
		mustAddMember(t, e, testActor, team.ID, "owner1", entity.RoleOwner)

		_, err := e.team.UpdateTeam(context.Background(), testActor, team.ID, "still mine")
		requireCode(t, err, "UNAUTHORIZED")

		updated, err := e.team.UpdateTeam(context.Background(), actorFor("owner1"), team.ID, "owner edit")
		require.NoError(t, err)
		assert.Equal(t, "owner edit", updated.Description)
	})
}

func TestUpdateTeamSettings(t *testing.T) {
	e := newEnv()
	team := mustCreateTeam(t, e, testActor, "platform")

	updated, err := e.team.UpdateTeamSettings(context.Background(), testActor, team.ID,
		map[string]string{entity.SettingMaxMembers: "2", "visibility": "private"})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MaxMembers())

	settings, err := e.team.GetTeamSettings(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", settings["visibility"])

	// Замена целиком, а не слияние
	updated, err = e.team.UpdateTeamSettings(context.Background(), testActor, team.ID,
		map[string]string{"visibility": "public"})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.MaxMembers())
	assert.Equal(t, "public", updated.Settings["visibility"])
}

func TestDeleteTeam(t *testing.T) {
	e := newEnv()
	team := mustCreateTeam(t, e, testActor, "platform")
	mustAddMember(t, e, testActor, team.ID, "owner1", entity.RoleOwner)
	mustAddMember(t, e, actorFor("owner1"), team.ID, "u2", entity.RoleMember)

	err := e.team.DeleteTeam(context.Background(), actorFor("owner1"), team.ID)
	require.NoError(t, err)

	_, err = e.team.GetTeam(context.Background(), team.ID)
	requireCode(t, err, "NOT_FOUND")

	// Участники удалены вместе с командой
	exists, err := e.members.ExistsByUserID(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, exists)

	// Журнал аудита переживает удаление команды
	entries := e.auditEntries(entity.AuditFilter{ResourceID: team.ID})
	assert.NotEmpty(t, entries)
}

func TestCreateTeamAuditUnavailable(t *testing.T) {
	e := newEnv()
	e.audits.failCreate = true

	_, err := e.team.CreateTeam(context.Background(), testActor, "platform", "", nil)
	requireCode(t, err, "AUDIT_UNAVAILABLE")

	// Мутация откатилась вместе с недоступным журналом
	teams, listErr := e.team.ListTeams(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, teams)
}
