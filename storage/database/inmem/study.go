package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/study"
)

type sessionRepository struct {
	db *sessionTable
}

var _ study.SessionRepository = (*sessionRepository)(nil)

func NewSessionRepository(db *DB) study.SessionRepository {
	return &sessionRepository{db: db.sessions}
}

func (repo *sessionRepository) query() []study.Session {
	sessions := make([]study.Session, 0, len(repo.db.table))
	for _, sess := range repo.db.table {
		sessions = append(sessions, *sess)
	}
	return sessions
}

func (repo *sessionRepository) CreateSession(_ context.Context, sess study.Session) (study.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	repo.db.table[sess.ID] = &sess
	return sess, nil
}

func (repo *sessionRepository) QueryAllSessions(_ context.Context, ordering ...core.DBOrdering) ([]study.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sessions := repo.query()
	sortSessions(sessions, ordering)
	return sessions, nil
}

func (repo *sessionRepository) GetSession(_ context.Context, id string) (study.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sess, ok := repo.db.table[id]; ok {
		return *sess, nil
	}
	return study.Session{}, study.ErrSessionNotFound
}

func (repo *sessionRepository) UpdateSession(_ context.Context, sess study.Session) (study.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[sess.ID]; !ok {
		return study.Session{}, study.ErrSessionNotFound
	}
	repo.db.table[sess.ID] = &sess
	return sess, nil
}

func (repo *sessionRepository) DeleteSessionsByID(_ context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *sessionRepository) DeleteSessionsByDate(_ context.Context, date study.Date) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for id, sess := range repo.db.table {
		if sess.EntryDate.Equal(date) {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}

// sortSessions orders by entry date then creation time ascending by default,
// or by the first recognized ordering term.
func sortSessions(sessions []study.Session, ordering []core.DBOrdering) {
	byDefault := func(i, j int) bool {
		if !sessions[i].EntryDate.Equal(sessions[j].EntryDate) {
			return sessions[i].EntryDate.Before(sessions[j].EntryDate)
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	}

	less := byDefault
	for _, ord := range ordering {
		var byField func(i, j int) bool
		switch ord.Field {
		case "entry_date":
			byField = byDefault
		case "day_number":
			byField = func(i, j int) bool { return sessions[i].DayNumber < sessions[j].DayNumber }
		case "subject":
			byField = func(i, j int) bool { return sessions[i].Subject < sessions[j].Subject }
		case "hours":
			byField = func(i, j int) bool { return sessions[i].Hours < sessions[j].Hours }
		case "created_at":
			byField = func(i, j int) bool { return sessions[i].CreatedAt.Before(sessions[j].CreatedAt) }
		default:
			continue
		}
		if ord.Ascending {
			less = byField
		} else {
			less = func(i, j int) bool { return byField(j, i) }
		}
		break
	}
	sort.SliceStable(sessions, less)
}

type subjectRepository struct {
	db *subjectTable
}

var _ study.SubjectRepository = (*subjectRepository)(nil)

func NewSubjectRepository(db *DB) study.SubjectRepository {
	return &subjectRepository{db: db.subjects}
}

func (repo *subjectRepository) CheckNameUniqueness(_ context.Context, name string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sub := range repo.db.table {
		if strings.EqualFold(sub.Name, name) {
			return study.ErrSubjectExists
		}
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(_ context.Context, sub study.Subject) (study.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *subjectRepository) QueryAllSubjects(_ context.Context) ([]study.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]study.Subject, 0, len(repo.db.table))
	for _, sub := range repo.db.table {
		subjects = append(subjects, *sub)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *subjectRepository) DeleteSubjectsByID(_ context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
