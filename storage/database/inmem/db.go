// Package inmemdb is a mutex-guarded in-memory implementation of the
// storage contracts; used by tests and local development without Postgres.
package inmemdb

import (
	"sync"

	"github.com/profconnect/backend/core/teacher"
)

type DB struct {
	teachers *teacherTable
}

type teacherTable struct {
	mutex sync.RWMutex
	table map[string]*teacher.Teacher
}

func Open() (*DB, error) {
	return &DB{
		teachers: &teacherTable{table: make(map[string]*teacher.Teacher)},
	}, nil
}
