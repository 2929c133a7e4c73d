// Package inmemdb keeps every table in process memory. It backs DEV runs and tests.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/examcenter/backend/core/course"
	"github.com/examcenter/backend/core/resource"
	"github.com/examcenter/backend/core/testdate"
	"github.com/examcenter/backend/core/trainer"
)

type (
	testDateTable struct {
		mutex sync.RWMutex
		table map[string]testdate.TestDate
	}

	courseTable struct {
		mutex sync.RWMutex
		table map[string]course.Course
	}

	trainerTable struct {
		mutex sync.RWMutex
		table map[string]trainer.Trainer
	}

	resourceTable struct {
		mutex sync.RWMutex
		table map[string]resource.Resource
	}
)

type DB struct {
	testDate *testDateTable
	course   *courseTable
	trainer  *trainerTable
	resource *resourceTable
}

func NewDB() *DB {
	return &DB{
		testDate: &testDateTable{table: make(map[string]testdate.TestDate)},
		course:   &courseTable{table: make(map[string]course.Course)},
		trainer:  &trainerTable{table: make(map[string]trainer.Trainer)},
		resource: &resourceTable{table: make(map[string]resource.Resource)},
	}
}

// Flush empties every table.
func (db *DB) Flush() {
	db.testDate.mutex.Lock()
	db.testDate.table = make(map[string]testdate.TestDate)
	db.testDate.mutex.Unlock()

	db.course.mutex.Lock()
	db.course.table = make(map[string]course.Course)
	db.course.mutex.Unlock()

	db.trainer.mutex.Lock()
	db.trainer.table = make(map[string]trainer.Trainer)
	db.trainer.mutex.Unlock()

	db.resource.mutex.Lock()
	db.resource.table = make(map[string]resource.Resource)
	db.resource.mutex.Unlock()
}

func newID() string { return uuid.New().String() }
