package inmemdb

import (
	"sync"

	"github.com/trezcool/studylog/core/admin"
	"github.com/trezcool/studylog/core/study"
)

// DB is an in-memory store backing the repositories in tests.
type DB struct {
	sessions *sessionTable
	subjects *subjectTable
	admins   *adminTable
}

func NewDB() *DB {
	return &DB{
		sessions: &sessionTable{table: make(map[string]*study.Session)},
		subjects: &subjectTable{table: make(map[string]*study.Subject)},
		admins:   &adminTable{table: make(map[string]*admin.Admin)},
	}
}

type sessionTable struct {
	mutex sync.RWMutex
	table map[string]*study.Session
}

type subjectTable struct {
	mutex sync.RWMutex
	table map[string]*study.Subject
}

type adminTable struct {
	mutex sync.RWMutex
	table map[string]*admin.Admin
}
