package study

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studylog/core"
)

// PlaceholderSubject is the reserved subject marking a date with no real study
// activity; placeholder rows keep the recorded date range contiguous.
const PlaceholderSubject = "No Study"

var (
	// errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrSubjectExists   = errors.New("a subject with this name already exists")
)

// Date is a calendar date (day precision, UTC); "2006-01-02" on the wire.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(core.DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(core.DateLayout) }

func (d Date) AddDays(n int) Date { return Date{d.AddDate(0, 0, n)} }

func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }

func (d Date) After(other Date) bool { return d.Time.After(other.Time) }

func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) { return d.Time, nil }

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = Date{time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)}
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into study.Date", src)
}

// Subject is a managed entry of the global subject list. Sessions reference
// subjects by free-text name, not by ID; deleting a subject does not cascade.
type Subject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Session is one study_sessions row: a study entry (or placeholder) on a calendar date.
type Session struct {
	ID        string    `json:"id"`
	EntryDate Date      `json:"entry_date"`
	DayNumber int       `json:"day_number"` // zero-based rank of EntryDate among all distinct dates
	Subject   string    `json:"subject"`
	Hours     float64   `json:"hours"`
	Topic     string    `json:"topic,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (s Session) IsPlaceholder() bool { return s.Subject == PlaceholderSubject }

func newPlaceholder(date Date, now time.Time) Session {
	return Session{
		EntryDate: date,
		Subject:   PlaceholderSubject,
		Hours:     0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewSession contains information needed to record a study session.
type NewSession struct {
	EntryDate string  `json:"entry_date" validate:"required,dateonly"`
	Subject   string  `json:"subject" validate:"required"`
	Hours     float64 `json:"hours" validate:"required,gt=0"`
	Topic     string  `json:"topic"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.EntryDate = core.CleanString(ns.EntryDate)
	ns.Subject = core.CleanString(ns.Subject)
	ns.Topic = core.CleanString(ns.Topic)
	return validate.Struct(ns)
}

// Date returns the parsed EntryDate; Validate must have passed first.
func (ns NewSession) Date() Date {
	d, _ := ParseDate(ns.EntryDate)
	return d
}

// NewSubject contains information needed to add a subject to the managed list.
type NewSubject struct {
	Name string `json:"name" validate:"required"`
}

func (nsub *NewSubject) Validate(validate *validator.Validate, svc Service) error {
	nsub.Name = core.CleanString(nsub.Name)
	if err := validate.Struct(nsub); err != nil {
		return err
	}
	return svc.CheckSubjectUniqueness(nsub.Name)
}

// SubjectSummary aggregates all real (non-placeholder) sessions of one subject.
type SubjectSummary struct {
	Subject  string  `json:"subject"`
	Hours    float64 `json:"hours"`
	Sessions int     `json:"sessions"`
	Share    float64 `json:"share"` // fraction of the grand total hours, 0..1
}
