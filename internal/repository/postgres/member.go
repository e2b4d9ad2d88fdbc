package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocell/team-service/internal/domain/entity"
	domainErrors "github.com/geocell/team-service/internal/domain/errors"
)

// MemberRepository реализует repository.MemberRepository для PostgreSQL
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository создает новый репозиторий участников
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

const memberColumns = `id, user_id, email, first_name, last_name, team_id, primary_role,
	is_active, last_login, created_at, updated_at, created_by, updated_by, version`

// Create создает нового участника вместе с его ролями и разрешениями
func (r *MemberRepository) Create(ctx context.Context, member *entity.TeamMember) error {
	conn := getConn(ctx, r.pool)

	query := `
		INSERT INTO team_members (id, user_id, email, first_name, last_name, team_id, primary_role,
			is_active, last_login, created_at, updated_at, created_by, updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := conn.Exec(ctx, query,
		member.ID,
		member.UserID,
		member.Email,
		member.FirstName,
		member.LastName,
		member.TeamID,
		member.PrimaryRole,
		member.IsActive,
		member.LastLogin,
		member.CreatedAt,
		member.UpdatedAt,
		member.CreatedBy,
		member.UpdatedBy,
		member.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create team member: %w", err)
	}

	if err := r.replaceCollections(ctx, conn, member); err != nil {
		return err
	}

	return nil
}

// GetByUserID возвращает участника по идентификатору пользователя
func (r *MemberRepository) GetByUserID(ctx context.Context, userID string) (*entity.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE user_id = $1`
	return r.getOne(ctx, query, userID)
}

// GetByTeamAndUser возвращает участника команды по идентификатору пользователя
func (r *MemberRepository) GetByTeamAndUser(ctx context.Context, teamID, userID string) (*entity.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE team_id = $1 AND user_id = $2`
	return r.getOne(ctx, query, teamID, userID)
}

// ListByTeam возвращает всех участников команды
func (r *MemberRepository) ListByTeam(ctx context.Context, teamID string) ([]*entity.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE team_id = $1 ORDER BY user_id`
	return r.getMany(ctx, query, teamID)
}

// ListActiveByTeam возвращает активных участников команды
func (r *MemberRepository) ListActiveByTeam(ctx context.Context, teamID string) ([]*entity.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE team_id = $1 AND is_active = true ORDER BY user_id`
	return r.getMany(ctx, query, teamID)
}

// ListByPrimaryRole возвращает участников команды с указанной основной ролью
func (r *MemberRepository) ListByPrimaryRole(ctx context.Context, teamID string, role entity.Role) ([]*entity.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE team_id = $1 AND primary_role = $2 ORDER BY user_id`
	return r.getMany(ctx, query, teamID, role)
}

// SearchByEmailDomain возвращает участников, email которых содержит подстроку
func (r *MemberRepository) SearchByEmailDomain(ctx context.Context, domain string) ([]*entity.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE email ILIKE '%' || $1 || '%' ORDER BY email`
	return r.getMany(ctx, query, domain)
}

// CountByTeam возвращает число участников команды
func (r *MemberRepository) CountByTeam(ctx context.Context, teamID string) (int64, error) {
	conn := getConn(ctx, r.pool)

	var count int64
	err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM team_members WHERE team_id = $1`, teamID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count team members: %w", err)
	}

	return count, nil
}

// ExistsByUserID проверяет, есть ли у пользователя членство в какой-либо команде
func (r *MemberRepository) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	conn := getConn(ctx, r.pool)

	var exists bool
	err := conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM team_members WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check member existence: %w", err)
	}

	return exists, nil
}

// Update обновляет участника с проверкой оптимистической версии
func (r *MemberRepository) Update(ctx context.Context, member *entity.TeamMember) error {
	conn := getConn(ctx, r.pool)

	query := `
		UPDATE team_members
		SET email = $3, first_name = $4, last_name = $5, primary_role = $6,
			is_active = $7, last_login = $8, updated_at = $9, updated_by = $10,
			version = version + 1
		WHERE id = $1 AND version = $2
	`

	result, err := conn.Exec(ctx, query,
		member.ID,
		member.Version,
		member.Email,
		member.FirstName,
		member.LastName,
		member.PrimaryRole,
		member.IsActive,
		member.LastLogin,
		member.UpdatedAt,
		member.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update team member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.versionMismatch(ctx, conn, member.ID)
	}

	if err := r.replaceCollections(ctx, conn, member); err != nil {
		return err
	}

	member.Version++
	return nil
}

// Delete удаляет участника; роли и разрешения удаляются каскадно
func (r *MemberRepository) Delete(ctx context.Context, memberID string) error {
	conn := getConn(ctx, r.pool)

	result, err := conn.Exec(ctx, `DELETE FROM team_members WHERE id = $1`, memberID)
	if err != nil {
		return fmt.Errorf("failed to delete team member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}

	return nil
}

// DeleteByTeam удаляет всех участников команды
func (r *MemberRepository) DeleteByTeam(ctx context.Context, teamID string) error {
	conn := getConn(ctx, r.pool)

	if _, err := conn.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("failed to delete team members: %w", err)
	}

	return nil
}

func (r *MemberRepository) getOne(ctx context.Context, query string, args ...any) (*entity.TeamMember, error) {
	conn := getConn(ctx, r.pool)

	member, err := scanMember(conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team member: %w", err)
	}

	if err := r.loadCollections(ctx, conn, member); err != nil {
		return nil, err
	}

	return member, nil
}

func (r *MemberRepository) getMany(ctx context.Context, query string, args ...any) ([]*entity.TeamMember, error) {
	conn := getConn(ctx, r.pool)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var members []*entity.TeamMember
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team members: %w", err)
	}

	for _, member := range members {
		if err := r.loadCollections(ctx, conn, member); err != nil {
			return nil, err
		}
	}

	return members, nil
}

func scanMember(row pgx.Row) (*entity.TeamMember, error) {
	var member entity.TeamMember
	err := row.Scan(
		&member.ID,
		&member.UserID,
		&member.Email,
		&member.FirstName,
		&member.LastName,
		&member.TeamID,
		&member.PrimaryRole,
		&member.IsActive,
		&member.LastLogin,
		&member.CreatedAt,
		&member.UpdatedAt,
		&member.CreatedBy,
		&member.UpdatedBy,
		&member.Version,
	)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) loadCollections(ctx context.Context, conn querier, member *entity.TeamMember) error {
	roleRows, err := conn.Query(ctx, `SELECT role FROM member_roles WHERE member_id = $1 ORDER BY role`, member.ID)
	if err != nil {
		return fmt.Errorf("failed to get member roles: %w", err)
	}
	defer roleRows.Close()

	for roleRows.Next() {
		var role entity.Role
		if err := roleRows.Scan(&role); err != nil {
			return fmt.Errorf("failed to scan member role: %w", err)
		}
		member.AdditionalRoles = append(member.AdditionalRoles, role)
	}
	if err := roleRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate member roles: %w", err)
	}

	permRows, err := conn.Query(ctx, `SELECT permission FROM member_permissions WHERE member_id = $1 ORDER BY permission`, member.ID)
	if err != nil {
		return fmt.Errorf("failed to get member permissions: %w", err)
	}
	defer permRows.Close()

	for permRows.Next() {
		var permission string
		if err := permRows.Scan(&permission); err != nil {
			return fmt.Errorf("failed to scan member permission: %w", err)
		}
		member.Permissions = append(member.Permissions, permission)
	}
	if err := permRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate member permissions: %w", err)
	}

	return nil
}

func (r *MemberRepository) replaceCollections(ctx context.Context, conn querier, member *entity.TeamMember) error {
	if _, err := conn.Exec(ctx, `DELETE FROM member_roles WHERE member_id = $1`, member.ID); err != nil {
		return fmt.Errorf("failed to delete old member roles: %w", err)
	}

	for _, role := range member.AdditionalRoles {
		if _, err := conn.Exec(ctx, `INSERT INTO member_roles (member_id, role) VALUES ($1, $2)`, member.ID, role); err != nil {
			return fmt.Errorf("failed to insert member role: %w", err)
		}
	}

	if _, err := conn.Exec(ctx, `DELETE FROM member_permissions WHERE member_id = $1`, member.ID); err != nil {
		return fmt.Errorf("failed to delete old member permissions: %w", err)
	}

	for _, permission := range member.Permissions {
		if _, err := conn.Exec(ctx, `INSERT INTO member_permissions (member_id, permission) VALUES ($1, $2)`, member.ID, permission); err != nil {
			return fmt.Errorf("failed to insert member permission: %w", err)
		}
	}

	return nil
}

// versionMismatch различает отсутствие строки и конфликт версий
func (r *MemberRepository) versionMismatch(ctx context.Context, conn querier, memberID string) error {
	var exists bool
	err := conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM team_members WHERE id = $1)`, memberID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check member existence: %w", err)
	}
	if exists {
		return domainErrors.ErrConflict
	}
	return domainErrors.ErrNotFound
}
