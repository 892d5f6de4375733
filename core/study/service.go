package study

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
)

type (
	SessionRepository interface {
		CreateSession(ctx context.Context, sess Session) (Session, error)
		// QueryAllSessions returns all rows; entry date (then creation time)
		// ascending unless an explicit ordering is given.
		QueryAllSessions(ctx context.Context, ordering ...core.DBOrdering) ([]Session, error)
		GetSession(ctx context.Context, id string) (Session, error)
		UpdateSession(ctx context.Context, sess Session) (Session, error)
		DeleteSessionsByID(ctx context.Context, ids ...string) (int, error)
		DeleteSessionsByDate(ctx context.Context, date Date) (int, error)
	}

	SubjectRepository interface {
		CheckNameUniqueness(ctx context.Context, name string) error
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
		DeleteSubjectsByID(ctx context.Context, ids ...string) (int, error)
	}

	Service interface {
		// LoadSessions runs the full load chain: fill date gaps with placeholders,
		// reload, resync day numbers, and return the resynced list.
		LoadSessions(ctx context.Context, ordering ...core.DBOrdering) ([]Session, error)
		AddSession(ctx context.Context, ns NewSession) (Session, error)
		DeleteSession(ctx context.Context, id string) error
		Summary(ctx context.Context) ([]SubjectSummary, error)
		ExportHTML(ctx context.Context) ([]byte, error)

		QuerySubjects(ctx context.Context) ([]Subject, error)
		CreateSubject(ctx context.Context, nsub NewSubject) (Subject, error)
		DeleteSubject(ctx context.Context, id string) error
		CheckSubjectUniqueness(name string) error
	}

	service struct {
		sessionRepo SessionRepository
		subjectRepo SubjectRepository
		logger      core.Logger
		conf        *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(sessionRepo SessionRepository, subjectRepo SubjectRepository, logger core.Logger, conf *core.Config) Service {
	return &service{
		sessionRepo: sessionRepo,
		subjectRepo: subjectRepo,
		logger:      logger,
		conf:        conf,
	}
}

// Sessions

func (svc *service) LoadSessions(ctx context.Context, ordering ...core.DBOrdering) ([]Session, error) {
	sessions, err := svc.sessionRepo.QueryAllSessions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	if len(sessions) == 0 {
		return []Session{}, nil
	}

	if svc.fillDateGaps(ctx, sessions) {
		reloaded, err := svc.sessionRepo.QueryAllSessions(ctx)
		if err != nil {
			// best effort: keep serving the pre-fill list
			svc.logger.Error(fmt.Sprintf("reloading sessions after gap fill: %v", err), err)
		} else {
			sessions = reloaded
		}
	}

	svc.resyncDayNumbers(ctx, sessions)

	if len(ordering) > 0 {
		if reordered, err := svc.sessionRepo.QueryAllSessions(ctx, ordering...); err != nil {
			svc.logger.Error(fmt.Sprintf("reloading sessions with ordering: %v", err), err)
		} else {
			sessions = reordered
		}
	}
	return sessions, nil
}

// fillDateGaps inserts a placeholder row for every calendar date between the
// earliest and latest entry date that has no row yet. Each insert is an
// independent write; failures are logged and skipped. Reports whether at least
// one row was inserted.
func (svc *service) fillDateGaps(ctx context.Context, sessions []Session) bool {
	seen := make(map[string]bool, len(sessions))
	min, max := sessions[0].EntryDate, sessions[0].EntryDate
	for _, sess := range sessions {
		seen[sess.EntryDate.String()] = true
		if sess.EntryDate.Before(min) {
			min = sess.EntryDate
		}
		if sess.EntryDate.After(max) {
			max = sess.EntryDate
		}
	}

	var inserted bool
	now := time.Now().UTC()
	for date := min; !date.After(max); date = date.AddDays(1) {
		if seen[date.String()] {
			continue
		}
		if _, err := svc.sessionRepo.CreateSession(ctx, newPlaceholder(date, now)); err != nil {
			svc.logger.Error(fmt.Sprintf("inserting placeholder for %s: %v", date, err), err)
			continue
		}
		inserted = true
	}
	return inserted
}

// resyncDayNumbers recomputes each row's day number as the zero-based rank of
// its date among all distinct dates present (ascending) and writes it back to
// every row unconditionally. Failed writes are logged and skipped; the
// in-memory list always carries the recomputed numbers.
func (svc *service) resyncDayNumbers(ctx context.Context, sessions []Session) {
	distinct := make([]string, 0, len(sessions))
	seen := make(map[string]bool, len(sessions))
	for _, sess := range sessions {
		if key := sess.EntryDate.String(); !seen[key] {
			seen[key] = true
			distinct = append(distinct, key)
		}
	}
	sort.Strings(distinct) // "2006-01-02" sorts chronologically

	ranks := make(map[string]int, len(distinct))
	for i, date := range distinct {
		ranks[date] = i
	}

	for i := range sessions {
		sessions[i].DayNumber = ranks[sessions[i].EntryDate.String()]
		if _, err := svc.sessionRepo.UpdateSession(ctx, sessions[i]); err != nil {
			svc.logger.Error(fmt.Sprintf("resyncing day number of session %s: %v", sessions[i].ID, err), err)
		}
	}
}

func (svc *service) AddSession(ctx context.Context, ns NewSession) (Session, error) {
	date := ns.Date()
	now := time.Now().UTC()

	sessions, err := svc.sessionRepo.QueryAllSessions(ctx)
	if err != nil {
		return Session{}, errors.Wrap(err, "querying sessions")
	}

	// a placeholder row on that date is converted in place instead of adding a second row
	var placeholder *Session
	for i := range sessions {
		if sessions[i].EntryDate.Equal(date) && sessions[i].IsPlaceholder() {
			placeholder = &sessions[i]
			break
		}
	}

	var sess Session
	if placeholder != nil {
		placeholder.Subject = ns.Subject
		placeholder.Hours = ns.Hours
		placeholder.Topic = ns.Topic
		placeholder.UpdatedAt = now
		sess, err = svc.sessionRepo.UpdateSession(ctx, *placeholder)
		if err != nil {
			return Session{}, errors.Wrap(err, "converting placeholder session")
		}
	} else {
		sess, err = svc.sessionRepo.CreateSession(ctx, Session{
			EntryDate: date,
			Subject:   ns.Subject,
			Hours:     ns.Hours,
			Topic:     ns.Topic,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return Session{}, errors.Wrap(err, "inserting session")
		}
	}

	// the add itself succeeded; the follow-up resync chain is best effort
	if _, err = svc.LoadSessions(ctx); err != nil {
		svc.logger.Error(fmt.Sprintf("resyncing after add: %v", err), err)
	}
	return sess, nil
}

func (svc *service) DeleteSession(ctx context.Context, id string) error {
	sessions, err := svc.sessionRepo.QueryAllSessions(ctx)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}

	var sess *Session
	for i := range sessions {
		if sessions[i].ID == id {
			sess = &sessions[i]
			break
		}
	}
	if sess == nil {
		return ErrSessionNotFound
	}

	if _, err = svc.sessionRepo.DeleteSessionsByID(ctx, id); err != nil {
		return errors.Wrap(err, "deleting session")
	}

	if !sess.IsPlaceholder() {
		var laterDateExists, otherRealOnDate bool
		for _, other := range sessions {
			if other.ID == id {
				continue
			}
			if other.EntryDate.After(sess.EntryDate) {
				laterDateExists = true
			}
			if other.EntryDate.Equal(sess.EntryDate) && !other.IsPlaceholder() {
				otherRealOnDate = true
			}
		}

		if !otherRealOnDate {
			if laterDateExists {
				// keep the date range contiguous
				now := time.Now().UTC()
				if _, err := svc.sessionRepo.CreateSession(ctx, newPlaceholder(sess.EntryDate, now)); err != nil {
					svc.logger.Error(fmt.Sprintf("inserting placeholder for %s: %v", sess.EntryDate, err), err)
				}
			} else {
				// the most recent date emptied out: trim it rather than leave a trailing placeholder
				if _, err := svc.sessionRepo.DeleteSessionsByDate(ctx, sess.EntryDate); err != nil {
					svc.logger.Error(fmt.Sprintf("trimming date %s: %v", sess.EntryDate, err), err)
				}
			}
		}
	}

	if _, err = svc.LoadSessions(ctx); err != nil {
		svc.logger.Error(fmt.Sprintf("resyncing after delete: %v", err), err)
	}
	return nil
}

// Summary aggregates per-subject totals over all real sessions, ordered by
// total hours descending (ties by name).
func (svc *service) Summary(ctx context.Context) ([]SubjectSummary, error) {
	sessions, err := svc.sessionRepo.QueryAllSessions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}

	var total float64
	bySubject := make(map[string]*SubjectSummary)
	order := make([]string, 0)
	for _, sess := range sessions {
		if sess.IsPlaceholder() {
			continue
		}
		sum, ok := bySubject[sess.Subject]
		if !ok {
			sum = &SubjectSummary{Subject: sess.Subject}
			bySubject[sess.Subject] = sum
			order = append(order, sess.Subject)
		}
		sum.Hours += sess.Hours
		sum.Sessions++
		total += sess.Hours
	}

	summaries := make([]SubjectSummary, 0, len(order))
	for _, name := range order {
		sum := *bySubject[name]
		if total > 0 {
			sum.Share = sum.Hours / total
		}
		summaries = append(summaries, sum)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Hours != summaries[j].Hours {
			return summaries[i].Hours > summaries[j].Hours
		}
		return summaries[i].Subject < summaries[j].Subject
	})
	return summaries, nil
}

// Subjects

func (svc *service) QuerySubjects(ctx context.Context) ([]Subject, error) {
	subjects, err := svc.subjectRepo.QueryAllSubjects(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (svc *service) CreateSubject(ctx context.Context, nsub NewSubject) (Subject, error) {
	now := time.Now().UTC()
	sub, err := svc.subjectRepo.CreateSubject(ctx, Subject{
		Name:      nsub.Name,
		CreatedAt: now,
	})
	if err != nil {
		return Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (svc *service) DeleteSubject(ctx context.Context, id string) error {
	// deleted by identity; sessions referencing the name are left untouched
	cnt, err := svc.subjectRepo.DeleteSubjectsByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if cnt == 0 {
		return ErrSubjectNotFound
	}
	return nil
}

func (svc *service) CheckSubjectUniqueness(name string) error {
	if err := svc.subjectRepo.CheckNameUniqueness(context.Background(), name); err != nil {
		if err == ErrSubjectExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}
