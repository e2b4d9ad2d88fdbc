package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/geocell/team-service/internal/domain/access"
	"github.com/geocell/team-service/internal/domain/entity"
	domainErrors "github.com/geocell/team-service/internal/domain/errors"
	"github.com/geocell/team-service/internal/logger"
	"github.com/geocell/team-service/internal/repository"
)

// MemberUseCase реализует бизнес-логику членства в командах.
// Инварианты: имя пользователя уникально среди всех участников (одно
// членство на пользователя), в команде не больше одного OWNER, лимит
// участников берется из настроек команды.
type MemberUseCase struct {
	teamRepo   repository.TeamRepository
	memberRepo repository.MemberRepository
	txManager  repository.TransactionManager
	audit      *AuditUseCase
	logger     *logger.Logger
}

// NewMemberUseCase создает новый usecase членства
func NewMemberUseCase(
	teamRepo repository.TeamRepository,
	memberRepo repository.MemberRepository,
	txManager repository.TransactionManager,
	audit *AuditUseCase,
	log *logger.Logger,
) *MemberUseCase {
	return &MemberUseCase{
		teamRepo:   teamRepo,
		memberRepo: memberRepo,
		txManager:  txManager,
		audit:      audit,
		logger:     log,
	}
}

// AddMember добавляет участника в команду. Роль OWNER допустима только
// пока у команды нет владельца; дальше владелец меняется исключительно
// через передачу владения.
func (uc *MemberUseCase) AddMember(
	ctx context.Context,
	actor entity.Actor,
	teamID string,
	member *entity.TeamMember,
) (*entity.TeamMember, error) {
	var result *entity.TeamMember

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		team, err := uc.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return teamLookupError(err)
		}

		if err := requireTeamAdmin(ctx, uc.memberRepo, team, actor.UserID); err != nil {
			return err
		}

		if member.UserID == "" || member.Email == "" {
			return domainErrors.NewDomainError(
				"INVALID_INPUT",
				"user_id and email are required",
				domainErrors.ErrInvalidInput,
			)
		}

		// Одно членство на пользователя во всей системе
		exists, err := uc.memberRepo.ExistsByUserID(ctx, member.UserID)
		if err != nil {
			return fmt.Errorf("failed to check member existence: %w", err)
		}
		if exists {
			return domainErrors.NewDomainError(
				"ALREADY_MEMBER",
				"user already belongs to a team",
				domainErrors.ErrAlreadyMember,
			)
		}

		if limit := team.MaxMembers(); limit > 0 {
			count, err := uc.memberRepo.CountByTeam(ctx, team.ID)
			if err != nil {
				return fmt.Errorf("failed to count team members: %w", err)
			}
			if count >= int64(limit) {
				return domainErrors.NewDomainError(
					"MEMBER_LIMIT_EXCEEDED",
					"team member limit reached",
					domainErrors.ErrMemberLimitExceeded,
				)
			}
		}

		role := member.PrimaryRole
		if role == "" {
			role = entity.RoleMember
		}
		if !role.Valid() {
			return domainErrors.NewDomainError(
				"INVALID_INPUT",
				"unknown role: "+string(member.PrimaryRole),
				domainErrors.ErrInvalidInput,
			)
		}
		if role == entity.RoleOwner {
			owners, err := uc.memberRepo.ListByPrimaryRole(ctx, team.ID, entity.RoleOwner)
			if err != nil {
				return fmt.Errorf("failed to get team owners: %w", err)
			}
			if len(owners) > 0 {
				return domainErrors.NewDomainError(
					"INVALID_OPERATION",
					"team already has an owner",
					domainErrors.ErrInvalidOperation,
				)
			}
		}

		now := time.Now()
		created := &entity.TeamMember{
			ID:              uuid.NewString(),
			UserID:          member.UserID,
			Email:           member.Email,
			FirstName:       member.FirstName,
			LastName:        member.LastName,
			TeamID:          team.ID,
			PrimaryRole:     role,
			AdditionalRoles: member.AdditionalRoles,
			Permissions:     member.Permissions,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
			CreatedBy:       actor.UserID,
			UpdatedBy:       actor.UserID,
			Version:         0,
		}

		if err := uc.memberRepo.Create(ctx, created); err != nil {
			return fmt.Errorf("failed to create team member: %w", err)
		}

		if err := uc.audit.LogSuccess(ctx, actor, entity.ActionCreate, entity.ResourceTeamMember,
			created.UserID, "member added to team",
			map[string]string{"team_id": team.ID, "role": string(role)}); err != nil {
			return err
		}

		result = created
		return nil
	})

	if err != nil {
		_ = uc.audit.LogFailure(ctx, actor, entity.ActionCreate, entity.ResourceTeamMember,
			member.UserID, "adding member failed", err)
		return nil, err
	}

	return result, nil
}

// RemoveMember удаляет участника из команды. Владелец не удаляется:
// сначала владение передается через TransferOwnership.
func (uc *MemberUseCase) RemoveMember(ctx context.Context, actor entity.Actor, teamID, userID string) error {
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		team, err := uc.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return teamLookupError(err)
		}

		if err := requireTeamAdmin(ctx, uc.memberRepo, team, actor.UserID); err != nil {
			return err
		}

		member, err := uc.memberRepo.GetByTeamAndUser(ctx, team.ID, userID)
		if err != nil {
			return memberLookupError(err)
		}

		if member.PrimaryRole == entity.RoleOwner {
			return domainErrors.NewDomainError(
				"INVALID_OPERATION",
				"cannot remove the team owner, transfer ownership first",
				domainErrors.ErrInvalidOperation,
			)
		}

		if err := uc.memberRepo.Delete(ctx, member.ID); err != nil {
			return fmt.Errorf("failed to delete team member: %w", err)
		}

		return uc.audit.LogSuccess(ctx, actor, entity.ActionDelete, entity.ResourceTeamMember,
			userID, "member removed from team", map[string]string{"team_id": team.ID})
	})

	if err != nil {
		_ = uc.audit.LogFailure(ctx, actor, entity.ActionDelete, entity.ResourceTeamMember,
			userID, "removing member failed", err)
		return err
	}

	return nil
}

// UpdateRole изменяет основную роль участника. Назначение OWNER идет
// только через передачу владения; понижать действующего OWNER тоже нельзя,
// иначе команда останется без владельца.
func (uc *MemberUseCase) UpdateRole(
	ctx context.Context,
	actor entity.Actor,
	teamID, userID string,
	newRole entity.Role,
) (*entity.TeamMember, error) {
	var result *entity.TeamMember

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if !newRole.Valid() {
			return domainErrors.NewDomainError(
				"INVALID_INPUT",
				"unknown role: "+string(newRole),
				domainErrors.ErrInvalidInput,
			)
		}
		if newRole == entity.RoleOwner {
			return domainErrors.NewDomainError(
				"INVALID_OPERATION",
				"owner role is assigned only via ownership transfer",
				domainErrors.ErrInvalidOperation,
			)
		}

		team, err := uc.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return teamLookupError(err)
		}

		if err := requireTeamAdmin(ctx, uc.memberRepo, team, actor.UserID); err != nil {
			return err
		}

		member, err := uc.memberRepo.GetByTeamAndUser(ctx, team.ID, userID)
		if err != nil {
			return memberLookupError(err)
		}

		if member.PrimaryRole == entity.RoleOwner {
			return domainErrors.NewDomainError(
				"INVALID_OPERATION",
				"cannot demote the team owner, transfer ownership first",
				domainErrors.ErrInvalidOperation,
			)
		}

		oldRole := member.PrimaryRole
		member.PrimaryRole = newRole
		member.UpdatedAt = time.Now()
		member.UpdatedBy = actor.UserID

		if err := uc.memberRepo.Update(ctx, member); err != nil {
			return memberWriteError(err)
		}

		if err := uc.audit.LogSuccess(ctx, actor, entity.ActionRoleChange, entity.ResourceTeamMember,
			userID, "member primary role changed",
			map[string]string{"team_id": team.ID, "from": string(oldRole), "to": string(newRole)}); err != nil {
			return err
		}

		result = member
		return nil
	})

	if err != nil {
		_ = uc.audit.LogFailure(ctx, actor, entity.ActionRoleChange, entity.ResourceTeamMember,
			userID, "role update failed", err)
		return nil, err
	}

	return result, nil
}

// AddAdditionalRole добавляет дополнительную роль участнику.
// Повторное добавление той же роли ничего не меняет.
func (uc *MemberUseCase) AddAdditionalRole(
	ctx context.Context,
	actor entity.Actor,
	teamID, userID string,
	role entity.Role,
) (*entity.TeamMember, error) {
	return uc.editMember(ctx, actor, teamID, userID, entity.ActionRoleChange, "additional role added",
		map[string]string{"role": string(role)},
		func(member *entity.TeamMember) error {
			if !role.Valid() || role == entity.RoleOwner {
				return domainErrors.NewDomainError(
					"INVALID_OPERATION",
					"role cannot be granted as additional: "+string(role),
					domainErrors.ErrInvalidOperation,
				)
			}
			if !member.HasAdditionalRole(role) {
				member.AdditionalRoles = append(member.AdditionalRoles, role)
			}
			return nil
		})
}

// RemoveAdditionalRole снимает дополнительную роль участника.
// Снятие отсутствующей роли не является ошибкой.
func (uc *MemberUseCase) RemoveAdditionalRole(
	ctx context.Context,
	actor entity.Actor,
	teamID, userID string,
	role entity.Role,
) (*entity.TeamMember, error) {
	return uc.editMember(ctx, actor, teamID, userID, entity.ActionRoleChange, "additional role removed",
		map[string]string{"role": string(role)},
		func(member *entity.TeamMember) error {
			roles := member.AdditionalRoles[:0]
			for _, r := range member.AdditionalRoles {
				if r != role {
					roles = append(roles, r)
				}
			}
			member.AdditionalRoles = roles
			return nil
		})
}

// AddPermission выдает участнику разрешение. Повторная выдача идемпотентна.
func (uc *MemberUseCase) AddPermission(
	ctx context.Context,
	actor entity.Actor,
	teamID, userID, permission string,
) (*entity.TeamMember, error) {
	return uc.editMember(ctx, actor, teamID, userID, entity.ActionPermissionChange, "permission granted",
		map[string]string{"permission": permission},
		func(member *entity.TeamMember) error {
			if permission == "" {
				return domainErrors.NewDomainError(
					"INVALID_INPUT",
					"permission is required",
					domainErrors.ErrInvalidInput,
				)
			}
			if !member.HasPermission(permission) {
				member.Permissions = append(member.Permissions, permission)
			}
			return nil
		})
}

// RemovePermission отзывает разрешение участника.
// Отзыв отсутствующего разрешения не является ошибкой.
func (uc *MemberUseCase) RemovePermission(
	ctx context.Context,
	actor entity.Actor,
	teamID, userID, permission string,
) (*entity.TeamMember, error) {
	return uc.editMember(ctx, actor, teamID, userID, entity.ActionPermissionChange, "permission revoked",
		map[string]string{"permission": permission},
		func(member *entity.TeamMember) error {
			permissions := member.Permissions[:0]
			for _, p := range member.Permissions {
				if p != permission {
					permissions = append(permissions, p)
				}
			}
			member.Permissions = permissions
			return nil
		})
}

// ActivateMember включает участника
func (uc *MemberUseCase) ActivateMember(
	ctx context.Context,
	actor entity.Actor,
	teamID, userID string,
) (*entity.TeamMember, error) {
	return uc.editMember(ctx, actor, teamID, userID, entity.ActionUpdate, "member activated", nil,
		func(member *entity.TeamMember) error {
			member.IsActive = true
			return nil
		})
}

// DeactivateMember отключает участника. Действующий владелец не
// отключается: сначала владение передается.
func (uc *MemberUseCase) DeactivateMember(
	ctx context.Context,
	actor entity.Actor,
	teamID, userID string,
) (*entity.TeamMember, error) {
	return uc.editMember(ctx, actor, teamID, userID, entity.ActionUpdate, "member deactivated", nil,
		func(member *entity.TeamMember) error {
			if member.PrimaryRole == entity.RoleOwner {
				return domainErrors.NewDomainError(
					"INVALID_OPERATION",
					"cannot deactivate the team owner, transfer ownership first",
					domainErrors.ErrInvalidOperation,
				)
			}
			member.IsActive = false
			return nil
		})
}

// UpdateLastLogin фиксирует время входа пользователя
func (uc *MemberUseCase) UpdateLastLogin(ctx context.Context, userID string) error {
	actor := entity.Actor{UserID: userID}

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		member, err := uc.memberRepo.GetByUserID(ctx, userID)
		if err != nil {
			return memberLookupError(err)
		}

		now := time.Now()
		member.LastLogin = &now
		member.UpdatedAt = now
		member.UpdatedBy = userID

		if err := uc.memberRepo.Update(ctx, member); err != nil {
			return memberWriteError(err)
		}

		return uc.audit.LogSuccess(ctx, actor, entity.ActionLogin, entity.ResourceUser,
			userID, "user logged in", nil)
	})

	if err != nil {
		_ = uc.audit.LogFailure(ctx, actor, entity.ActionLogin, entity.ResourceUser,
			userID, "login record failed", err)
		return err
	}

	return nil
}

// GetMember возвращает участника команды
func (uc *MemberUseCase) GetMember(ctx context.Context, teamID, userID string) (*entity.TeamMember, error) {
	member, err := uc.memberRepo.GetByTeamAndUser(ctx, teamID, userID)
	if err != nil {
		return nil, memberLookupError(err)
	}
	return member, nil
}

// ListMembers возвращает всех участников команды
func (uc *MemberUseCase) ListMembers(ctx context.Context, teamID string) ([]*entity.TeamMember, error) {
	if _, err := uc.teamRepo.GetByID(ctx, teamID); err != nil {
		return nil, teamLookupError(err)
	}

	members, err := uc.memberRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	if members == nil {
		members = []*entity.TeamMember{}
	}
	return members, nil
}

// ListActiveMembers возвращает активных участников команды
func (uc *MemberUseCase) ListActiveMembers(ctx context.Context, teamID string) ([]*entity.TeamMember, error) {
	if _, err := uc.teamRepo.GetByID(ctx, teamID); err != nil {
		return nil, teamLookupError(err)
	}

	members, err := uc.memberRepo.ListActiveByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active team members: %w", err)
	}
	if members == nil {
		members = []*entity.TeamMember{}
	}
	return members, nil
}

// SearchMembersByEmail возвращает участников по подстроке email
func (uc *MemberUseCase) SearchMembersByEmail(ctx context.Context, domain string) ([]*entity.TeamMember, error) {
	members, err := uc.memberRepo.SearchByEmailDomain(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to search members by email: %w", err)
	}
	if members == nil {
		members = []*entity.TeamMember{}
	}
	return members, nil
}

// CountMembers возвращает число участников команды
func (uc *MemberUseCase) CountMembers(ctx context.Context, teamID string) (int64, error) {
	if _, err := uc.teamRepo.GetByID(ctx, teamID); err != nil {
		return 0, teamLookupError(err)
	}
	return uc.memberRepo.CountByTeam(ctx, teamID)
}

// IsTeamAdmin возвращает true для активного участника с ролью ADMIN или OWNER
func (uc *MemberUseCase) IsTeamAdmin(ctx context.Context, teamID, userID string) (bool, error) {
	member, err := uc.memberRepo.GetByTeamAndUser(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get team member: %w", err)
	}
	return access.IsAdmin(member), nil
}

// IsTeamMember возвращает true при наличии активного членства
func (uc *MemberUseCase) IsTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	member, err := uc.memberRepo.GetByTeamAndUser(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get team member: %w", err)
	}
	return member.IsActive, nil
}

// editMember выполняет типовую мутацию участника: авторизация актора,
// загрузка, правка, условная запись по версии и ровно одна запись журнала.
func (uc *MemberUseCase) editMember(
	ctx context.Context,
	actor entity.Actor,
	teamID, userID string,
	actionType entity.ActionType,
	description string,
	details map[string]string,
	mutate func(member *entity.TeamMember) error,
) (*entity.TeamMember, error) {
	var result *entity.TeamMember

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		team, err := uc.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return teamLookupError(err)
		}

		if err := requireTeamAdmin(ctx, uc.memberRepo, team, actor.UserID); err != nil {
			return err
		}

		member, err := uc.memberRepo.GetByTeamAndUser(ctx, team.ID, userID)
		if err != nil {
			return memberLookupError(err)
		}

		if err := mutate(member); err != nil {
			return err
		}

		member.UpdatedAt = time.Now()
		member.UpdatedBy = actor.UserID

		if err := uc.memberRepo.Update(ctx, member); err != nil {
			return memberWriteError(err)
		}

		if details == nil {
			details = map[string]string{}
		}
		details["team_id"] = team.ID

		if err := uc.audit.LogSuccess(ctx, actor, actionType, entity.ResourceTeamMember,
			userID, description, details); err != nil {
			return err
		}

		result = member
		return nil
	})

	if err != nil {
		_ = uc.audit.LogFailure(ctx, actor, actionType, entity.ResourceTeamMember,
			userID, description+" failed", err)
		return nil, err
	}

	return result, nil
}

// memberLookupError оборачивает ошибку чтения участника в доменную
func memberLookupError(err error) error {
	if errors.Is(err, domainErrors.ErrNotFound) {
		return domainErrors.NewDomainError("NOT_FOUND", "team member not found", domainErrors.ErrNotFound)
	}
	return fmt.Errorf("failed to get team member: %w", err)
}

// memberWriteError оборачивает ошибку условной записи участника в доменную
func memberWriteError(err error) error {
	if errors.Is(err, domainErrors.ErrConflict) {
		return domainErrors.NewDomainError("CONFLICT", "member was modified concurrently", domainErrors.ErrConflict)
	}
	if errors.Is(err, domainErrors.ErrNotFound) {
		return domainErrors.NewDomainError("NOT_FOUND", "team member not found", domainErrors.ErrNotFound)
	}
	return fmt.Errorf("failed to update team member: %w", err)
}
