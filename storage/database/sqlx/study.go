package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/study"
)

// sessionOrderingFields whitelists the columns an API "ordering" param may sort by.
var sessionOrderingFields = map[string]bool{
	"entry_date": true,
	"day_number": true,
	"subject":    true,
	"hours":      true,
	"created_at": true,
}

type sessionRow struct {
	ID        string      `db:"id"`
	EntryDate time.Time   `db:"entry_date"`
	DayNumber int         `db:"day_number"`
	Subject   string      `db:"subject"`
	Hours     float64     `db:"hours"`
	Topic     null.String `db:"topic"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (row sessionRow) session() study.Session {
	return study.Session{
		ID:        row.ID,
		EntryDate: study.NewDate(row.EntryDate.Year(), row.EntryDate.Month(), row.EntryDate.Day()),
		DayNumber: row.DayNumber,
		Subject:   row.Subject,
		Hours:     row.Hours,
		Topic:     row.Topic.String,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func newSessionRow(sess study.Session) sessionRow {
	return sessionRow{
		ID:        sess.ID,
		EntryDate: sess.EntryDate.Time,
		DayNumber: sess.DayNumber,
		Subject:   sess.Subject,
		Hours:     sess.Hours,
		Topic:     null.NewString(sess.Topic, sess.Topic != ""),
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
}

type sessionRepository struct {
	db *sqlx.DB
}

var _ study.SessionRepository = (*sessionRepository)(nil)

func NewSessionRepository(db *sqlx.DB) study.SessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, sess study.Session) (study.Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	q := `
	INSERT INTO study_sessions (id, entry_date, day_number, subject, hours, topic, created_at, updated_at)
	VALUES (:id, :entry_date, :day_number, :subject, :hours, :topic, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newSessionRow(sess)); err != nil {
		return study.Session{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

func (repo *sessionRepository) QueryAllSessions(ctx context.Context, ordering ...core.DBOrdering) ([]study.Session, error) {
	orderBy := "entry_date ASC, created_at ASC"
	if terms := orderingClause(ordering, sessionOrderingFields); terms != "" {
		orderBy = terms
	}

	var rows []sessionRow
	q := "SELECT * FROM study_sessions ORDER BY " + orderBy
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}

	sessions := make([]study.Session, len(rows))
	for i, row := range rows {
		sessions[i] = row.session()
	}
	return sessions, nil
}

func (repo *sessionRepository) GetSession(ctx context.Context, id string) (study.Session, error) {
	var row sessionRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM study_sessions WHERE id = $1", id); err != nil {
		return study.Session{}, trapNoRowsErr(err, study.ErrSessionNotFound, "getting session")
	}
	return row.session(), nil
}

func (repo *sessionRepository) UpdateSession(ctx context.Context, sess study.Session) (study.Session, error) {
	q := `
	UPDATE study_sessions
	SET entry_date = :entry_date, day_number = :day_number, subject = :subject,
	    hours = :hours, topic = :topic, updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newSessionRow(sess))
	if err != nil {
		return study.Session{}, errors.Wrap(err, "updating session")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return study.Session{}, study.ErrSessionNotFound
	}
	return sess, nil
}

func (repo *sessionRepository) DeleteSessionsByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In("DELETE FROM study_sessions WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting sessions")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting sessions")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

func (repo *sessionRepository) DeleteSessionsByDate(ctx context.Context, date study.Date) (int, error) {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM study_sessions WHERE entry_date = $1", date.Time)
	if err != nil {
		return 0, errors.Wrap(err, "deleting sessions by date")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

type subjectRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type subjectRepository struct {
	db *sqlx.DB
}

var _ study.SubjectRepository = (*subjectRepository)(nil)

func NewSubjectRepository(db *sqlx.DB) study.SubjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CheckNameUniqueness(ctx context.Context, name string) error {
	var exists bool
	q := "SELECT EXISTS (SELECT 1 FROM app_subjects WHERE LOWER(name) = LOWER($1))"
	if err := repo.db.GetContext(ctx, &exists, q, name); err != nil {
		return errors.Wrap(err, "checking subject name")
	}
	if exists {
		return study.ErrSubjectExists
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub study.Subject) (study.Subject, error) {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	q := "INSERT INTO app_subjects (id, name, created_at) VALUES ($1, $2, $3)"
	if _, err := repo.db.ExecContext(ctx, q, sub.ID, sub.Name, sub.CreatedAt); err != nil {
		return study.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo *subjectRepository) QueryAllSubjects(ctx context.Context) ([]study.Subject, error) {
	var rows []subjectRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM app_subjects ORDER BY name ASC"); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}

	subjects := make([]study.Subject, len(rows))
	for i, row := range rows {
		subjects[i] = study.Subject{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}
	}
	return subjects, nil
}

func (repo *subjectRepository) DeleteSubjectsByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In("DELETE FROM app_subjects WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting subjects")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting subjects")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

// orderingClause renders the whitelisted ordering terms; unknown fields are dropped.
func orderingClause(ordering []core.DBOrdering, allowed map[string]bool) string {
	terms := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if allowed[ord.Field] {
			terms = append(terms, ord.String())
		}
	}
	return strings.Join(terms, ", ")
}

// trapNoRowsErr converts sql.ErrNoRows into the domain's not-found error.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}
