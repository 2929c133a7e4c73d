package inmemdb

import (
	"context"
	"sort"

	"github.com/examcenter/backend/core/trainer"
)

type trainerRepository struct {
	db *trainerTable
}

var _ trainer.Repository = (*trainerRepository)(nil)

func NewTrainerRepository(db *DB) trainer.Repository {
	return &trainerRepository{db: db.trainer}
}

func (repo *trainerRepository) CreateTrainer(_ context.Context, t trainer.Trainer) (trainer.Trainer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t.ID = newID()
	repo.db.table[t.ID] = t
	return t, nil
}

func (repo *trainerRepository) QueryTrainers(_ context.Context, activeOnly bool) ([]trainer.Trainer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	trainers := make([]trainer.Trainer, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		if activeOnly && !t.IsActive {
			continue
		}
		trainers = append(trainers, t)
	}
	sort.Slice(trainers, func(i, j int) bool {
		if trainers[i].Order == trainers[j].Order {
			return trainers[i].Name < trainers[j].Name
		}
		return trainers[i].Order < trainers[j].Order
	})
	return trainers, nil
}

func (repo *trainerRepository) GetTrainer(_ context.Context, id string) (trainer.Trainer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return t, nil
	}
	return trainer.Trainer{}, trainer.ErrNotFound
}

func (repo *trainerRepository) UpdateTrainer(_ context.Context, t trainer.Trainer) (trainer.Trainer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[t.ID]; !ok {
		return trainer.Trainer{}, trainer.ErrNotFound
	}
	repo.db.table[t.ID] = t
	return t, nil
}

func (repo *trainerRepository) DeleteTrainer(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return trainer.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
