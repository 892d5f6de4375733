package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/studylog/core/admin"
	"github.com/trezcool/studylog/core/study"
)

// Logger is a no-op core.Logger for tests.
type Logger struct{}

func (Logger) Debug(msg string, args ...interface{}) {}
func (Logger) Info(msg string, args ...interface{})  {}
func (Logger) Warn(msg string, args ...interface{})  {}
func (Logger) Error(msg string, args ...interface{}) {}
func (Logger) Fatal(msg string, args ...interface{}) {}

func CreateAdmin(
	t *testing.T,
	repo admin.Repository,
	name, uname, email, pwd string,
	isActive bool,
	createdAt ...time.Time,
) admin.Admin {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	adm := admin.Admin{
		Name:      name,
		Username:  uname,
		Email:     email,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	adm.SetActive(isActive)
	if pwd != "" {
		if err := adm.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAdmin() failed: %v", err)
		}
	}
	adm, err := repo.CreateAdmin(context.Background(), adm)
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	return adm
}

func CreateSession(
	t *testing.T,
	repo study.SessionRepository,
	date, subject string,
	hours float64,
	topic string,
	createdAt ...time.Time,
) study.Session {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	entryDate, err := study.ParseDate(date)
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	sess, err := repo.CreateSession(context.Background(), study.Session{
		EntryDate: entryDate,
		Subject:   subject,
		Hours:     hours,
		Topic:     topic,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess
}

func CreateSubject(t *testing.T, repo study.SubjectRepository, name string) study.Subject {
	sub, err := repo.CreateSubject(context.Background(), study.Subject{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}
