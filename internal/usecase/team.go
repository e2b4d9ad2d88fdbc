package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/geocell/team-service/internal/domain/entity"
	domainErrors "github.com/geocell/team-service/internal/domain/errors"
	"github.com/geocell/team-service/internal/logger"
	"github.com/geocell/team-service/internal/repository"
)

// TeamUseCase реализует бизнес-логику для команд
type TeamUseCase struct {
	teamRepo   repository.TeamRepository
	memberRepo repository.MemberRepository
	txManager  repository.TransactionManager
	audit      *AuditUseCase
	logger     *logger.Logger
}

// NewTeamUseCase создает новый usecase для команд
func NewTeamUseCase(
	teamRepo repository.TeamRepository,
	memberRepo repository.MemberRepository,
	txManager repository.TransactionManager,
	audit *AuditUseCase,
	log *logger.Logger,
) *TeamUseCase {
	return &TeamUseCase{
		teamRepo:   teamRepo,
		memberRepo: memberRepo,
		txManager:  txManager,
		audit:      audit,
		logger:     log,
	}
}

// CreateTeam создает команду без участников. Имя команды глобально уникально.
func (uc *TeamUseCase) CreateTeam(
	ctx context.Context,
	actor entity.Actor,
	name, description string,
	settings map[string]string,
) (*entity.Team, error) {
	var result *entity.Team

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if name == "" {
			return domainErrors.NewDomainError(
				"INVALID_INPUT",
				"team name is required",
				domainErrors.ErrInvalidInput,
			)
		}

		exists, err := uc.teamRepo.ExistsByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check team existence: %w", err)
		}

		if exists {
			return domainErrors.NewDomainError(
				"TEAM_EXISTS",
				"team name already exists",
				domainErrors.ErrTeamExists,
			)
		}

		if settings == nil {
			settings = map[string]string{}
		}

		now := time.Now()
		team := &entity.Team{
			ID:          uuid.NewString(),
			Name:        name,
			Description: description,
			Settings:    settings,
			CreatedAt:   now,
			UpdatedAt:   now,
			CreatedBy:   actor.UserID,
			UpdatedBy:   actor.UserID,
			Version:     0,
		}

		if err := uc.teamRepo.Create(ctx, team); err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}

		if err := uc.audit.LogSuccess(ctx, actor, entity.ActionCreate, entity.ResourceTeam,
			team.ID, "team created", map[string]string{"name": team.Name}); err != nil {
			return err
		}

		result = team
		return nil
	})

	if err != nil {
		_ = uc.audit.LogFailure(ctx, actor, entity.ActionCreate, entity.ResourceTeam,
			name, "team creation failed", err)
		return nil, err
	}

	return result, nil
}

// GetTeam возвращает команду по идентификатору
func (uc *TeamUseCase) GetTeam(ctx context.Context, teamID string) (*entity.Team, error) {
	team, err := uc.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, teamLookupError(err)
	}
	return team, nil
}

// GetTeamByName возвращает команду по имени
func (uc *TeamUseCase) GetTeamByName(ctx context.Context, name string) (*entity.Team, error) {
	team, err := uc.teamRepo.GetByName(ctx, name)
	if err != nil {
		return nil, teamLookupError(err)
	}
	return team, nil
}

// ListTeams возвращает все команды
func (uc *TeamUseCase) ListTeams(ctx context.Context) ([]*entity.Team, error) {
	teams, err := uc.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if teams == nil {
		teams = []*entity.Team{}
	}
	return teams, nil
}

// SearchTeamsByName возвращает команды, имя которых содержит подстроку
func (uc *TeamUseCase) SearchTeamsByName(ctx context.Context, pattern string) ([]*entity.Team, error) {
	teams, err := uc.teamRepo.SearchByName(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search teams: %w", err)
	}
	if teams == nil {
		teams = []*entity.Team{}
	}
	return teams, nil
}

// GetTeamsCreatedBy возвращает команды, созданные пользователем
func (uc *TeamUseCase) GetTeamsCreatedBy(ctx context.Context, userID string) ([]*entity.Team, error) {
	teams, err := uc.teamRepo.GetByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams by creator: %w", err)
	}
	if teams == nil {
		teams = []*entity.Team{}
	}
	return teams, nil
}

// UpdateTeam обновляет описание команды
func (uc *TeamUseCase) UpdateTeam(
	ctx context.Context,
	actor entity.Actor,
	teamID, description string,
) (*entity.Team, error) {
	var result *entity.Team

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		team, err := uc.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return teamLookupError(err)
		}

		if err := requireTeamAdmin(ctx, uc.memberRepo, team, actor.UserID); err != nil {
			return err
		}

		team.Description = description
		team.UpdatedAt = time.Now()
		team.UpdatedBy = actor.UserID

		if err := uc.teamRepo.Update(ctx, team); err != nil {
			return teamWriteError(err)
		}

		if err := uc.audit.LogSuccess(ctx, actor, entity.ActionUpdate, entity.ResourceTeam,
			team.ID, "team updated", nil); err != nil {
			return err
		}

		result = team
		return nil
	})

	if err != nil {
		_ = uc.audit.LogFailure(ctx, actor, entity.ActionUpdate, entity.ResourceTeam,
			teamID, "team update failed", err)
		return nil, err
	}

	return result, nil
}

// UpdateTeamSettings заменяет настройки команды
func (uc *TeamUseCase) UpdateTeamSettings(
	ctx context.Context,
	actor entity.Actor,
	teamID string,
	settings map[string]string,
) (*entity.Team, error) {
	var result *entity.Team

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		team, err := uc.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return teamLookupError(err)
		}

		if err := requireTeamAdmin(ctx, uc.memberRepo, team, actor.UserID); err != nil {
			return err
		}

		if settings == nil {
			settings = map[string]string{}
		}

		team.Settings = settings
		team.UpdatedAt = time.Now()
		team.UpdatedBy = actor.UserID

		if err := uc.teamRepo.Update(ctx, team); err != nil {
			return teamWriteError(err)
		}

		if err := uc.audit.LogSuccess(ctx, actor, entity.ActionUpdate, entity.ResourceTeam,
			team.ID, "team settings updated", nil); err != nil {
			return err
		}

		result = team
		return nil
	})

	if err != nil {
		_ = uc.audit.LogFailure(ctx, actor, entity.ActionUpdate, entity.ResourceTeam,
			teamID, "team settings update failed", err)
		return nil, err
	}

	return result, nil
}

// GetTeamSettings возвращает настройки команды
func (uc *TeamUseCase) GetTeamSettings(ctx context.Context, teamID string) (map[string]string, error) {
	team, err := uc.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, teamLookupError(err)
	}
	return team.Settings, nil
}

// DeleteTeam удаляет команду вместе с ее участниками.
// Записи журнала аудита, ссылающиеся на команду, сохраняются.
func (uc *TeamUseCase) DeleteTeam(ctx context.Context, actor entity.Actor, teamID string) error {
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		team, err := uc.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return teamLookupError(err)
		}

		if err := requireTeamAdmin(ctx, uc.memberRepo, team, actor.UserID); err != nil {
			return err
		}

		if err := uc.memberRepo.DeleteByTeam(ctx, team.ID); err != nil {
			return fmt.Errorf("failed to delete team members: %w", err)
		}

		if err := uc.teamRepo.Delete(ctx, team.ID); err != nil {
			return fmt.Errorf("failed to delete team: %w", err)
		}

		return uc.audit.LogSuccess(ctx, actor, entity.ActionDelete, entity.ResourceTeam,
			team.ID, "team deleted", map[string]string{"name": team.Name})
	})

	if err != nil {
		_ = uc.audit.LogFailure(ctx, actor, entity.ActionDelete, entity.ResourceTeam,
			teamID, "team deletion failed", err)
		return err
	}

	return nil
}

// teamLookupError оборачивает ошибку чтения команды в доменную
func teamLookupError(err error) error {
	if errors.Is(err, domainErrors.ErrNotFound) {
		return domainErrors.NewDomainError("NOT_FOUND", "team not found", domainErrors.ErrNotFound)
	}
	return fmt.Errorf("failed to get team: %w", err)
}

// teamWriteError оборачивает ошибку условной записи команды в доменную
func teamWriteError(err error) error {
	if errors.Is(err, domainErrors.ErrConflict) {
		return domainErrors.NewDomainError("CONFLICT", "team was modified concurrently", domainErrors.ErrConflict)
	}
	if errors.Is(err, domainErrors.ErrNotFound) {
		return domainErrors.NewDomainError("NOT_FOUND", "team not found", domainErrors.ErrNotFound)
	}
	return fmt.Errorf("failed to update team: %w", err)
}
