package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/resource"
)

type resourceRow struct {
	ID          string      `db:"id"`
	Category    string      `db:"category"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	FileURL     null.String `db:"file_url"`
	FilePath    null.String `db:"file_path"`
	FileName    null.String `db:"file_name"`
	FileType    null.String `db:"file_type"`
	Order       int         `db:"order"`
	IsActive    bool        `db:"is_active"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func newResourceRow(r resource.Resource) resourceRow {
	return resourceRow{
		ID:          r.ID,
		Category:    string(r.Category),
		Title:       r.Title,
		Description: optString(r.Description),
		FileURL:     optString(r.FileURL),
		FilePath:    optString(r.FilePath),
		FileName:    optString(r.FileName),
		FileType:    optString(r.FileType),
		Order:       r.Order,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (row resourceRow) toResource() resource.Resource {
	return resource.Resource{
		ID:          row.ID,
		Category:    resource.Category(row.Category),
		Title:       row.Title,
		Description: row.Description.String,
		FileURL:     row.FileURL.String,
		FilePath:    row.FilePath.String,
		FileName:    row.FileName.String,
		FileType:    row.FileType.String,
		Order:       row.Order,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

const resourceColumns = `id, category, title, description, file_url, file_path, file_name, file_type, "order", is_active, created_at, updated_at`

type resourceRepository struct {
	db core.DBExecutor
}

var _ resource.Repository = (*resourceRepository)(nil)

func NewResourceRepository(db core.DBExecutor) resource.Repository {
	return &resourceRepository{db: db}
}

func (repo *resourceRepository) CreateResource(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	r.ID = newID()
	const q = `
		INSERT INTO resources (` + resourceColumns + `)
		VALUES (:id, :category, :title, :description, :file_url, :file_path, :file_name, :file_type, :order, :is_active,
			:created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, newResourceRow(r)); err != nil {
		return resource.Resource{}, core.NewUnavailableError(err, "inserting resource")
	}
	return r, nil
}

func (repo *resourceRepository) QueryResources(ctx context.Context, activeOnly bool) ([]resource.Resource, error) {
	q := `SELECT ` + resourceColumns + ` FROM resources`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += core.OrderBy(
		core.DBOrdering{Field: "category", Ascending: true},
		core.DBOrdering{Field: `"order"`, Ascending: true},
		core.DBOrdering{Field: "title", Ascending: true},
	)

	var rows []resourceRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, core.NewUnavailableError(err, "querying resources")
	}
	resources := make([]resource.Resource, 0, len(rows))
	for _, row := range rows {
		resources = append(resources, row.toResource())
	}
	return resources, nil
}

func (repo *resourceRepository) GetResource(ctx context.Context, id string) (resource.Resource, error) {
	var row resourceRow
	q := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return resource.Resource{}, trapNoRowsErr(err, resource.ErrNotFound, "getting resource")
	}
	return row.toResource(), nil
}

func (repo *resourceRepository) UpdateResource(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	const q = `
		UPDATE resources SET
			category = :category, title = :title, description = :description, file_url = :file_url,
			file_path = :file_path, file_name = :file_name, file_type = :file_type, "order" = :order,
			is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, repo.db, q, newResourceRow(r))
	if err != nil {
		return resource.Resource{}, core.NewUnavailableError(err, "updating resource")
	}
	if err = checkAffected(res, resource.ErrNotFound, "updating resource"); err != nil {
		return resource.Resource{}, err
	}
	return r, nil
}

func (repo *resourceRepository) DeleteResource(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return core.NewUnavailableError(err, "deleting resource")
	}
	return checkAffected(res, resource.ErrNotFound, "deleting resource")
}
