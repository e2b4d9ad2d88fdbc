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

// TeamRepository реализует repository.TeamRepository для PostgreSQL
type TeamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository создает новый репозиторий команд
func NewTeamRepository(pool *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

const teamColumns = `id, name, description, created_at, updated_at, created_by, updated_by, version`

// Create создает новую команду вместе с ее настройками
func (r *TeamRepository) Create(ctx context.Context, team *entity.Team) error {
	conn := getConn(ctx, r.pool)

	query := `
		INSERT INTO teams (id, name, description, created_at, updated_at, created_by, updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := conn.Exec(ctx, query,
		team.ID,
		team.Name,
		team.Description,
		team.CreatedAt,
		team.UpdatedAt,
		team.CreatedBy,
		team.UpdatedBy,
		team.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	if err := r.replaceSettings(ctx, conn, team.ID, team.Settings); err != nil {
		return err
	}

	return nil
}

// GetByID возвращает команду по идентификатору
func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (*entity.Team, error) {
	return r.getOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, teamID)
}

// GetByName возвращает команду по имени (регистрозависимо)
func (r *TeamRepository) GetByName(ctx context.Context, name string) (*entity.Team, error) {
	return r.getOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE name = $1`, name)
}

// List возвращает все команды
func (r *TeamRepository) List(ctx context.Context) ([]*entity.Team, error) {
	return r.getMany(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name`)
}

// SearchByName возвращает команды, имя которых содержит подстроку
// (без учета регистра)
func (r *TeamRepository) SearchByName(ctx context.Context, pattern string) ([]*entity.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE name ILIKE '%' || $1 || '%' ORDER BY name`
	return r.getMany(ctx, query, pattern)
}

// GetByCreator возвращает команды, созданные пользователем
func (r *TeamRepository) GetByCreator(ctx context.Context, userID string) ([]*entity.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE created_by = $1 ORDER BY name`
	return r.getMany(ctx, query, userID)
}

// ExistsByName проверяет существование команды с таким именем
func (r *TeamRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	conn := getConn(ctx, r.pool)

	var exists bool
	err := conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM teams WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check team existence: %w", err)
	}

	return exists, nil
}

// Update обновляет команду с проверкой оптимистической версии
func (r *TeamRepository) Update(ctx context.Context, team *entity.Team) error {
	conn := getConn(ctx, r.pool)

	query := `
		UPDATE teams
		SET description = $3, updated_at = $4, updated_by = $5, version = version + 1
		WHERE id = $1 AND version = $2
	`

	result, err := conn.Exec(ctx, query,
		team.ID,
		team.Version,
		team.Description,
		team.UpdatedAt,
		team.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.versionMismatch(ctx, conn, team.ID)
	}

	if err := r.replaceSettings(ctx, conn, team.ID, team.Settings); err != nil {
		return err
	}

	team.Version++
	return nil
}

// Delete удаляет команду; настройки удаляются каскадно
func (r *TeamRepository) Delete(ctx context.Context, teamID string) error {
	conn := getConn(ctx, r.pool)

	result, err := conn.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}

	return nil
}

func (r *TeamRepository) getOne(ctx context.Context, query string, arg any) (*entity.Team, error) {
	conn := getConn(ctx, r.pool)

	var team entity.Team
	err := conn.QueryRow(ctx, query, arg).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.CreatedAt,
		&team.UpdatedAt,
		&team.CreatedBy,
		&team.UpdatedBy,
		&team.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	settings, err := r.loadSettings(ctx, conn, team.ID)
	if err != nil {
		return nil, err
	}
	team.Settings = settings

	return &team, nil
}

func (r *TeamRepository) getMany(ctx context.Context, query string, args ...any) ([]*entity.Team, error) {
	conn := getConn(ctx, r.pool)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []*entity.Team
	for rows.Next() {
		var team entity.Team
		err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Description,
			&team.CreatedAt,
			&team.UpdatedAt,
			&team.CreatedBy,
			&team.UpdatedBy,
			&team.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}

	for _, team := range teams {
		settings, err := r.loadSettings(ctx, conn, team.ID)
		if err != nil {
			return nil, err
		}
		team.Settings = settings
	}

	return teams, nil
}

func (r *TeamRepository) loadSettings(ctx context.Context, conn querier, teamID string) (map[string]string, error) {
	rows, err := conn.Query(ctx, `SELECT setting_key, setting_value FROM team_settings WHERE team_id = $1`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan team setting: %w", err)
		}
		settings[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team settings: %w", err)
	}

	return settings, nil
}

func (r *TeamRepository) replaceSettings(ctx context.Context, conn querier, teamID string, settings map[string]string) error {
	if _, err := conn.Exec(ctx, `DELETE FROM team_settings WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("failed to delete old team settings: %w", err)
	}

	for key, value := range settings {
		_, err := conn.Exec(ctx,
			`INSERT INTO team_settings (team_id, setting_key, setting_value) VALUES ($1, $2, $3)`,
			teamID, key, value,
		)
		if err != nil {
			return fmt.Errorf("failed to insert team setting: %w", err)
		}
	}

	return nil
}

// versionMismatch различает отсутствие строки и конфликт версий
func (r *TeamRepository) versionMismatch(ctx context.Context, conn querier, teamID string) error {
	var exists bool
	err := conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM teams WHERE id = $1)`, teamID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check team existence: %w", err)
	}
	if exists {
		return domainErrors.ErrConflict
	}
	return domainErrors.ErrNotFound
}
