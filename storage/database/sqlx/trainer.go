package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/trainer"
)

type trainerRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	TitleLine string      `db:"title_line"`
	Bio       string      `db:"bio"`
	PhotoURL  null.String `db:"photo_url"`
	PhotoPath null.String `db:"photo_path"`
	Order     int         `db:"order"`
	IsActive  bool        `db:"is_active"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func newTrainerRow(t trainer.Trainer) trainerRow {
	return trainerRow{
		ID:        t.ID,
		Name:      t.Name,
		TitleLine: t.TitleLine,
		Bio:       t.Bio,
		PhotoURL:  optString(t.PhotoURL),
		PhotoPath: optString(t.PhotoPath),
		Order:     t.Order,
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
}

func (row trainerRow) toTrainer() trainer.Trainer {
	return trainer.Trainer{
		ID:        row.ID,
		Name:      row.Name,
		TitleLine: row.TitleLine,
		Bio:       row.Bio,
		PhotoURL:  row.PhotoURL.String,
		PhotoPath: row.PhotoPath.String,
		Order:     row.Order,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

const trainerColumns = `id, name, title_line, bio, photo_url, photo_path, "order", is_active, created_at, updated_at`

type trainerRepository struct {
	db core.DBExecutor
}

var _ trainer.Repository = (*trainerRepository)(nil)

func NewTrainerRepository(db core.DBExecutor) trainer.Repository {
	return &trainerRepository{db: db}
}

func (repo *trainerRepository) CreateTrainer(ctx context.Context, t trainer.Trainer) (trainer.Trainer, error) {
	t.ID = newID()
	const q = `
		INSERT INTO trainers (` + trainerColumns + `)
		VALUES (:id, :name, :title_line, :bio, :photo_url, :photo_path, :order, :is_active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, newTrainerRow(t)); err != nil {
		return trainer.Trainer{}, core.NewUnavailableError(err, "inserting trainer")
	}
	return t, nil
}

func (repo *trainerRepository) QueryTrainers(ctx context.Context, activeOnly bool) ([]trainer.Trainer, error) {
	q := `SELECT ` + trainerColumns + ` FROM trainers`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += core.OrderBy(
		core.DBOrdering{Field: `"order"`, Ascending: true},
		core.DBOrdering{Field: "name", Ascending: true},
	)

	var rows []trainerRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, core.NewUnavailableError(err, "querying trainers")
	}
	trainers := make([]trainer.Trainer, 0, len(rows))
	for _, row := range rows {
		trainers = append(trainers, row.toTrainer())
	}
	return trainers, nil
}

func (repo *trainerRepository) GetTrainer(ctx context.Context, id string) (trainer.Trainer, error) {
	var row trainerRow
	q := `SELECT ` + trainerColumns + ` FROM trainers WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return trainer.Trainer{}, trapNoRowsErr(err, trainer.ErrNotFound, "getting trainer")
	}
	return row.toTrainer(), nil
}

func (repo *trainerRepository) UpdateTrainer(ctx context.Context, t trainer.Trainer) (trainer.Trainer, error) {
	const q = `
		UPDATE trainers SET
			name = :name, title_line = :title_line, bio = :bio, photo_url = :photo_url, photo_path = :photo_path,
			"order" = :order, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, repo.db, q, newTrainerRow(t))
	if err != nil {
		return trainer.Trainer{}, core.NewUnavailableError(err, "updating trainer")
	}
	if err = checkAffected(res, trainer.ErrNotFound, "updating trainer"); err != nil {
		return trainer.Trainer{}, err
	}
	return t, nil
}

func (repo *trainerRepository) DeleteTrainer(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM trainers WHERE id = $1`, id)
	if err != nil {
		return core.NewUnavailableError(err, "deleting trainer")
	}
	return checkAffected(res, trainer.ErrNotFound, "deleting trainer")
}
