package usecase_test

import (
	"context"
	"strings"
	"time"

	"github.com/geocell/team-service/internal/domain/entity"
	domainErrors "github.com/geocell/team-service/internal/domain/errors"
	"github.com/geocell/team-service/internal/logger"
	"github.com/geocell/team-service/internal/usecase"
)

// memStore общее in-memory хранилище для фейковых репозиториев
type memStore struct {
	teams   map[string]*entity.Team
	members map[string]*entity.TeamMember
	audits  []*entity.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		teams:   make(map[string]*entity.Team),
		members: make(map[string]*entity.TeamMember),
	}
}

func (s *memStore) snapshot() *memStore {
	copied := newMemStore()
	for id, team := range s.teams {
		copied.teams[id] = cloneTeam(team)
	}
	for id, member := range s.members {
		copied.members[id] = cloneMember(member)
	}
	copied.audits = append([]*entity.AuditLog(nil), s.audits...)
	return copied
}

func (s *memStore) restore(from *memStore) {
	s.teams = from.teams
	s.members = from.members
	s.audits = from.audits
}

func cloneTeam(team *entity.Team) *entity.Team {
	copied := *team
	copied.Settings = make(map[string]string, len(team.Settings))
	for k, v := range team.Settings {
		copied.Settings[k] = v
	}
	return &copied
}

func cloneMember(member *entity.TeamMember) *entity.TeamMember {
	copied := *member
	copied.AdditionalRoles = append([]entity.Role(nil), member.AdditionalRoles...)
	copied.Permissions = append([]string(nil), member.Permissions...)
	return &copied
}

// fakeTxManager откатывает хранилище к снимку при ошибке, имитируя
// транзакционную семантику настоящего менеджера
type fakeTxManager struct {
	store *memStore
}

func (tm *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	before := tm.store.snapshot()
	if err := fn(ctx); err != nil {
		tm.store.restore(before)
		return err
	}
	return nil
}

type fakeTeamRepo struct {
	store *memStore
}

func (r *fakeTeamRepo) Create(_ context.Context, team *entity.Team) error {
	r.store.teams[team.ID] = cloneTeam(team)
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, teamID string) (*entity.Team, error) {
	team, ok := r.store.teams[teamID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneTeam(team), nil
}

func (r *fakeTeamRepo) GetByName(_ context.Context, name string) (*entity.Team, error) {
	for _, team := range r.store.teams {
		if team.Name == name {
			return cloneTeam(team), nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r *fakeTeamRepo) List(_ context.Context) ([]*entity.Team, error) {
	var teams []*entity.Team
	for _, team := range r.store.teams {
		teams = append(teams, cloneTeam(team))
	}
	return teams, nil
}

func (r *fakeTeamRepo) SearchByName(_ context.Context, pattern string) ([]*entity.Team, error) {
	var teams []*entity.Team
	for _, team := range r.store.teams {
		if strings.Contains(strings.ToLower(team.Name), strings.ToLower(pattern)) {
			teams = append(teams, cloneTeam(team))
		}
	}
	return teams, nil
}

func (r *fakeTeamRepo) GetByCreator(_ context.Context, userID string) ([]*entity.Team, error) {
	var teams []*entity.Team
	for _, team := range r.store.teams {
		if team.CreatedBy == userID {
			teams = append(teams, cloneTeam(team))
		}
	}
	return teams, nil
}

func (r *fakeTeamRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, team := range r.store.teams {
		if team.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTeamRepo) Update(_ context.Context, team *entity.Team) error {
	stored, ok := r.store.teams[team.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Version != team.Version {
		return domainErrors.ErrConflict
	}
	team.Version++
	r.store.teams[team.ID] = cloneTeam(team)
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, teamID string) error {
	if _, ok := r.store.teams[teamID]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(r.store.teams, teamID)
	return nil
}

type fakeMemberRepo struct {
	store *memStore

	// conflictOn имитирует конкурентного писателя: первый Update
	// участника с этим userID завершается ErrConflict
	conflictOn string
}

func (r *fakeMemberRepo) Create(_ context.Context, member *entity.TeamMember) error {
	r.store.members[member.ID] = cloneMember(member)
	return nil
}

func (r *fakeMemberRepo) GetByUserID(_ context.Context, userID string) (*entity.TeamMember, error) {
	for _, member := range r.store.members {
		if member.UserID == userID {
			return cloneMember(member), nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r *fakeMemberRepo) GetByTeamAndUser(_ context.Context, teamID, userID string) (*entity.TeamMember, error) {
	for _, member := range r.store.members {
		if member.TeamID == teamID && member.UserID == userID {
			return cloneMember(member), nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r *fakeMemberRepo) ListByTeam(_ context.Context, teamID string) ([]*entity.TeamMember, error) {
	var members []*entity.TeamMember
	for _, member := range r.store.members {
		if member.TeamID == teamID {
			members = append(members, cloneMember(member))
		}
	}
	return members, nil
}

func (r *fakeMemberRepo) ListActiveByTeam(_ context.Context, teamID string) ([]*entity.TeamMember, error) {
	var members []*entity.TeamMember
	for _, member := range r.store.members {
		if member.TeamID == teamID && member.IsActive {
			members = append(members, cloneMember(member))
		}
	}
	return members, nil
}

func (r *fakeMemberRepo) ListByPrimaryRole(_ context.Context, teamID string, role entity.Role) ([]*entity.TeamMember, error) {
	var members []*entity.TeamMember
	for _, member := range r.store.members {
		if member.TeamID == teamID && member.PrimaryRole == role {
			members = append(members, cloneMember(member))
		}
	}
	return members, nil
}

func (r *fakeMemberRepo) SearchByEmailDomain(_ context.Context, domain string) ([]*entity.TeamMember, error) {
	var members []*entity.TeamMember
	for _, member := range r.store.members {
		if strings.Contains(strings.ToLower(member.Email), strings.ToLower(domain)) {
			members = append(members, cloneMember(member))
		}
	}
	return members, nil
}

func (r *fakeMemberRepo) CountByTeam(_ context.Context, teamID string) (int64, error) {
	var count int64
	for _, member := range r.store.members {
		if member.TeamID == teamID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMemberRepo) ExistsByUserID(_ context.Context, userID string) (bool, error) {
	for _, member := range r.store.members {
		if member.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMemberRepo) Update(_ context.Context, member *entity.TeamMember) error {
	if r.conflictOn != "" && r.conflictOn == member.UserID {
		r.conflictOn = ""
		return domainErrors.ErrConflict
	}

	stored, ok := r.store.members[member.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Version != member.Version {
		return domainErrors.ErrConflict
	}
	member.Version++
	r.store.members[member.ID] = cloneMember(member)
	return nil
}

func (r *fakeMemberRepo) Delete(_ context.Context, memberID string) error {
	if _, ok := r.store.members[memberID]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(r.store.members, memberID)
	return nil
}

func (r *fakeMemberRepo) DeleteByTeam(_ context.Context, teamID string) error {
	for id, member := range r.store.members {
		if member.TeamID == teamID {
			delete(r.store.members, id)
		}
	}
	return nil
}

type fakeAuditRepo struct {
	store *memStore

	// failCreate имитирует недоступность журнала аудита
	failCreate bool
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *entity.AuditLog) error {
	if r.failCreate {
		return domainErrors.ErrAuditUnavailable
	}

	copied := *entry
	copied.Details = make(map[string]string, len(entry.Details))
	for k, v := range entry.Details {
		copied.Details[k] = v
	}
	r.store.audits = append(r.store.audits, &copied)
	return nil
}

func (r *fakeAuditRepo) Query(_ context.Context, filter entity.AuditFilter) ([]*entity.AuditLog, error) {
	var entries []*entity.AuditLog
	for _, entry := range r.store.audits {
		if matchesFilter(entry, filter) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func matchesFilter(entry *entity.AuditLog, filter entity.AuditFilter) bool {
	if filter.UserID != "" && entry.UserID != filter.UserID {
		return false
	}
	if filter.ActionType != "" && entry.ActionType != filter.ActionType {
		return false
	}
	if filter.ResourceType != "" && entry.ResourceType != filter.ResourceType {
		return false
	}
	if filter.ResourceID != "" && entry.ResourceID != filter.ResourceID {
		return false
	}
	if filter.IPAddress != "" && entry.IPAddress != filter.IPAddress {
		return false
	}
	if filter.Success != nil && entry.Success != *filter.Success {
		return false
	}
	if filter.From != nil && entry.Timestamp.Before(*filter.From) {
		return false
	}
	if filter.To != nil && entry.Timestamp.After(*filter.To) {
		return false
	}
	return true
}

func (r *fakeAuditRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	entries, _ := r.Query(ctx, entity.AuditFilter{UserID: userID})
	return int64(len(entries)), nil
}

func (r *fakeAuditRepo) CountByActionType(ctx context.Context, actionType entity.ActionType) (int64, error) {
	entries, _ := r.Query(ctx, entity.AuditFilter{ActionType: actionType})
	return int64(len(entries)), nil
}

func (r *fakeAuditRepo) CountByResourceType(ctx context.Context, resourceType entity.ResourceType) (int64, error) {
	entries, _ := r.Query(ctx, entity.AuditFilter{ResourceType: resourceType})
	return int64(len(entries)), nil
}

func (r *fakeAuditRepo) Purge(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []*entity.AuditLog
	var deleted int64
	for _, entry := range r.store.audits {
		if entry.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	r.store.audits = kept
	return deleted, nil
}

// env тестовое окружение с фейковыми репозиториями и usecase-ами
type env struct {
	store   *memStore
	teams   *fakeTeamRepo
	members *fakeMemberRepo
	audits  *fakeAuditRepo

	audit  *usecase.AuditUseCase
	team   *usecase.TeamUseCase
	member *usecase.MemberUseCase
}

func newEnv() *env {
	store := newMemStore()
	teams := &fakeTeamRepo{store: store}
	members := &fakeMemberRepo{store: store}
	audits := &fakeAuditRepo{store: store}
	tx := &fakeTxManager{store: store}

	log := logger.NewNop()
	audit := usecase.NewAuditUseCase(audits, log)

	return &env{
		store:   store,
		teams:   teams,
		members: members,
		audits:  audits,
		audit:   audit,
		team:    usecase.NewTeamUseCase(teams, members, tx, audit, log),
		member:  usecase.NewMemberUseCase(teams, members, tx, audit, log),
	}
}

// auditEntries возвращает записи журнала по фильтру
func (e *env) auditEntries(filter entity.AuditFilter) []*entity.AuditLog {
	entries, _ := e.audits.Query(context.Background(), filter)
	return entries
}
