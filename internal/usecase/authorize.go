package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocell/team-service/internal/domain/access"
	"github.com/geocell/team-service/internal/domain/entity"
	domainErrors "github.com/geocell/team-service/internal/domain/errors"
	"github.com/geocell/team-service/internal/repository"
)

// requireTeamAdmin проверяет право актора управлять командой: нужен активный
// участник с ролью ADMIN или OWNER. Пока у команды нет владельца, командой
// управляет ее создатель, иначе первый участник не мог бы быть добавлен.
func requireTeamAdmin(
	ctx context.Context,
	memberRepo repository.MemberRepository,
	team *entity.Team,
	actorID string,
) error {
	member, err := memberRepo.GetByTeamAndUser(ctx, team.ID, actorID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return fmt.Errorf("failed to get actor membership: %w", err)
	}

	if member != nil && access.IsAdmin(member) {
		return nil
	}

	if actorID == team.CreatedBy {
		owners, err := memberRepo.ListByPrimaryRole(ctx, team.ID, entity.RoleOwner)
		if err != nil {
			return fmt.Errorf("failed to get team owners: %w", err)
		}
		if len(owners) == 0 {
			return nil
		}
	}

	return domainErrors.NewDomainError(
		"UNAUTHORIZED",
		"actor is not an admin of the team",
		domainErrors.ErrUnauthorized,
	)
}
