package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geocell/team-service/internal/domain/entity"
	domainErrors "github.com/geocell/team-service/internal/domain/errors"
)

var testActor = entity.Actor{UserID: "root", IPAddress: "10.0.0.1", UserAgent: "go-test"}

func actorFor(userID string) entity.Actor {
	return entity.Actor{UserID: userID, IPAddress: "10.0.0.1", UserAgent: "go-test"}
}

// requireCode проверяет, что ошибка доменная и несет ожидаемый код
func requireCode(t *testing.T, err error, code string) {
	t.Helper()

	var domainErr *domainErrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code)
}

func mustCreateTeam(t *testing.T, e *env, actor entity.Actor, name string) *entity.Team {
	t.Helper()

	team, err := e.team.CreateTeam(context.Background(), actor, name, "", nil)
	require.NoError(t, err)
	require.NotNil(t, team)
	return team
}

func mustAddMember(t *testing.T, e *env, actor entity.Actor, teamID, userID string, role entity.Role) *entity.TeamMember {
	t.Helper()

	member, err := e.member.AddMember(context.Background(), actor, teamID, &entity.TeamMember{
		UserID:      userID,
		Email:       userID + "@geocell.example",
		PrimaryRole: role,
	})
	require.NoError(t, err)
	require.NotNil(t, member)
	return member
}
