package usecase

import (
	"context"
	"time"

	"github.com/geocell/team-service/internal/domain/entity"
	domainErrors "github.com/geocell/team-service/internal/domain/errors"
)

// TransferOwnership атомарно передает владение командой: уходящий владелец
// понижается до ADMIN, новый владелец получает OWNER. Обе записи обновляются
// в одной транзакции с проверкой версий, поэтому внешний наблюдатель никогда
// не увидит команду с нулем или двумя владельцами. Конкурентная передача или
// смена роли проваливает операцию целиком с ошибкой CONFLICT.
func (uc *MemberUseCase) TransferOwnership(
	ctx context.Context,
	actor entity.Actor,
	teamID, currentOwnerID, newOwnerID string,
) error {
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		team, err := uc.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return teamLookupError(err)
		}

		current, err := uc.memberRepo.GetByTeamAndUser(ctx, team.ID, currentOwnerID)
		if err != nil {
			return memberLookupError(err)
		}

		// Проверка владения идет до разбора состояния нового владельца
		if !current.IsActive || current.PrimaryRole != entity.RoleOwner {
			return domainErrors.NewDomainError(
				"UNAUTHORIZED",
				"user is not the team owner",
				domainErrors.ErrUnauthorized,
			)
		}

		next, err := uc.memberRepo.GetByTeamAndUser(ctx, team.ID, newOwnerID)
		if err != nil {
			return memberLookupError(err)
		}

		if currentOwnerID == newOwnerID {
			return domainErrors.NewDomainError(
				"INVALID_OPERATION",
				"cannot transfer ownership to the current owner",
				domainErrors.ErrInvalidOperation,
			)
		}

		if !next.IsActive {
			return domainErrors.NewDomainError(
				"INVALID_OPERATION",
				"new owner must be an active team member",
				domainErrors.ErrInvalidOperation,
			)
		}

		now := time.Now()
		previousRole := next.PrimaryRole

		current.PrimaryRole = entity.RoleAdmin
		current.UpdatedAt = now
		current.UpdatedBy = actor.UserID

		next.PrimaryRole = entity.RoleOwner
		next.UpdatedAt = now
		next.UpdatedBy = actor.UserID

		if err := uc.memberRepo.Update(ctx, current); err != nil {
			return memberWriteError(err)
		}
		if err := uc.memberRepo.Update(ctx, next); err != nil {
			return memberWriteError(err)
		}

		if err := uc.audit.LogSuccess(ctx, actor, entity.ActionRoleChange, entity.ResourceTeam,
			team.ID, "owner demoted to admin",
			map[string]string{"user_id": currentOwnerID, "from": string(entity.RoleOwner), "to": string(entity.RoleAdmin)}); err != nil {
			return err
		}

		return uc.audit.LogSuccess(ctx, actor, entity.ActionRoleChange, entity.ResourceTeam,
			team.ID, "member promoted to owner",
			map[string]string{"user_id": newOwnerID, "from": string(previousRole), "to": string(entity.RoleOwner)})
	})

	if err != nil {
		_ = uc.audit.LogFailure(ctx, actor, entity.ActionRoleChange, entity.ResourceTeam,
			teamID, "ownership transfer failed", err)
		return err
	}

	return nil
}
