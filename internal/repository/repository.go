package repository

import (
	"context"
	"time"

	"github.com/geocell/team-service/internal/domain/entity"
)

type TeamRepository interface {
	Create(ctx context.Context, team *entity.Team) error
	GetByID(ctx context.Context, teamID string) (*entity.Team, error)
	GetByName(ctx context.Context, name string) (*entity.Team, error)
	List(ctx context.Context) ([]*entity.Team, error)
	SearchByName(ctx context.Context, pattern string) ([]*entity.Team, error)
	GetByCreator(ctx context.Context, userID string) ([]*entity.Team, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	// Update выполняет условную запись: версия в базе должна совпадать с
	// team.Version, иначе возвращается ErrConflict. При успехе версия
	// инкрементируется и в базе, и в переданной структуре.
	Update(ctx context.Context, team *entity.Team) error
	Delete(ctx context.Context, teamID string) error
}

type MemberRepository interface {
	Create(ctx context.Context, member *entity.TeamMember) error
	GetByUserID(ctx context.Context, userID string) (*entity.TeamMember, error)
	GetByTeamAndUser(ctx context.Context, teamID, userID string) (*entity.TeamMember, error)
	ListByTeam(ctx context.Context, teamID string) ([]*entity.TeamMember, error)
	ListActiveByTeam(ctx context.Context, teamID string) ([]*entity.TeamMember, error)
	ListByPrimaryRole(ctx context.Context, teamID string, role entity.Role) ([]*entity.TeamMember, error)
	SearchByEmailDomain(ctx context.Context, domain string) ([]*entity.TeamMember, error)
	CountByTeam(ctx context.Context, teamID string) (int64, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	// Update условная запись по версии, см. TeamRepository.Update
	Update(ctx context.Context, member *entity.TeamMember) error
	Delete(ctx context.Context, memberID string) error
	DeleteByTeam(ctx context.Context, teamID string) error
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
	Query(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLog, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	CountByActionType(ctx context.Context, actionType entity.ActionType) (int64, error)
	CountByResourceType(ctx context.Context, resourceType entity.ResourceType) (int64, error)
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
