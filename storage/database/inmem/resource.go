package inmemdb

import (
	"context"
	"sort"

	"github.com/examcenter/backend/core/resource"
)

type resourceRepository struct {
	db *resourceTable
}

var _ resource.Repository = (*resourceRepository)(nil)

func NewResourceRepository(db *DB) resource.Repository {
	return &resourceRepository{db: db.resource}
}

func (repo *resourceRepository) CreateResource(_ context.Context, r resource.Resource) (resource.Resource, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r.ID = newID()
	repo.db.table[r.ID] = r
	return r, nil
}

func (repo *resourceRepository) QueryResources(_ context.Context, activeOnly bool) ([]resource.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	resources := make([]resource.Resource, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		if activeOnly && !r.IsActive {
			continue
		}
		resources = append(resources, r)
	}
	sort.Slice(resources, func(i, j int) bool {
		a, b := resources[i], resources[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Title < b.Title
	})
	return resources, nil
}

func (repo *resourceRepository) GetResource(_ context.Context, id string) (resource.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.table[id]; ok {
		return r, nil
	}
	return resource.Resource{}, resource.ErrNotFound
}

func (repo *resourceRepository) UpdateResource(_ context.Context, r resource.Resource) (resource.Resource, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[r.ID]; !ok {
		return resource.Resource{}, resource.ErrNotFound
	}
	repo.db.table[r.ID] = r
	return r, nil
}

func (repo *resourceRepository) DeleteResource(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return resource.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
