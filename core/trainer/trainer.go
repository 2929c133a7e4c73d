package trainer

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/examcenter/backend/core"
)

var (
	NowFunc = time.Now // mockable

	ErrNotFound = errors.New("trainer not found")
)

type Trainer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TitleLine string    `json:"title_line"`
	Bio       string    `json:"bio"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	PhotoPath string    `json:"photo_path,omitempty"`
	Order     int       `json:"order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type NewTrainer struct {
	Name      string `json:"name" validate:"required,max=120"`
	TitleLine string `json:"title_line" validate:"max=200"`
	Bio       string `json:"bio" validate:"max=5000"`
	PhotoURL  string `json:"photo_url" validate:"omitempty,url"`
	PhotoPath string `json:"photo_path"`
	Order     int    `json:"order"`
	IsActive  *bool  `json:"is_active"`
}

func (nt *NewTrainer) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.TitleLine = core.CleanString(nt.TitleLine)
	nt.Bio = core.CleanString(nt.Bio)
	nt.PhotoURL = core.CleanString(nt.PhotoURL)
	nt.PhotoPath = core.CleanString(nt.PhotoPath)
	return validate.Struct(nt)
}

// UpdateTrainer holds the fields to change; nil fields are kept.
type UpdateTrainer struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=120"`
	TitleLine *string `json:"title_line" validate:"omitempty,max=200"`
	Bio       *string `json:"bio" validate:"omitempty,max=5000"`
	PhotoURL  *string `json:"photo_url" validate:"omitempty,url"`
	PhotoPath *string `json:"photo_path"`
	Order     *int    `json:"order"`
	IsActive  *bool   `json:"is_active"`
}

func (ut *UpdateTrainer) Validate(validate *validator.Validate) error {
	return validate.Struct(ut)
}

func (ut UpdateTrainer) apply(t Trainer) Trainer {
	if ut.Name != nil {
		t.Name = core.CleanString(*ut.Name)
	}
	if ut.TitleLine != nil {
		t.TitleLine = core.CleanString(*ut.TitleLine)
	}
	if ut.Bio != nil {
		t.Bio = core.CleanString(*ut.Bio)
	}
	if ut.PhotoURL != nil {
		t.PhotoURL = core.CleanString(*ut.PhotoURL)
	}
	if ut.PhotoPath != nil {
		t.PhotoPath = core.CleanString(*ut.PhotoPath)
	}
	if ut.Order != nil {
		t.Order = *ut.Order
	}
	if ut.IsActive != nil {
		t.IsActive = *ut.IsActive
	}
	return t
}

type (
	Repository interface {
		CreateTrainer(ctx context.Context, t Trainer) (Trainer, error)
		// QueryTrainers returns trainers ordered by display order, then name.
		QueryTrainers(ctx context.Context, activeOnly bool) ([]Trainer, error)
		GetTrainer(ctx context.Context, id string) (Trainer, error)
		UpdateTrainer(ctx context.Context, t Trainer) (Trainer, error)
		DeleteTrainer(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, nt NewTrainer) (Trainer, error)
		Query(ctx context.Context, activeOnly bool) ([]Trainer, error)
		GetByID(ctx context.Context, id string) (Trainer, error)
		// Update replaces the trainer's photo blob when a new photo path is set.
		Update(ctx context.Context, orig Trainer, ut UpdateTrainer) (Trainer, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo   Repository
		blobs  core.BlobStore
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, blobs core.BlobStore, logger core.Logger) Service {
	return &service{repo: repo, blobs: blobs, logger: logger}
}

func (svc *service) Create(ctx context.Context, nt NewTrainer) (Trainer, error) {
	now := NowFunc().UTC()
	t := Trainer{
		Name:      nt.Name,
		TitleLine: nt.TitleLine,
		Bio:       nt.Bio,
		PhotoURL:  nt.PhotoURL,
		PhotoPath: nt.PhotoPath,
		Order:     nt.Order,
		IsActive:  nt.IsActive == nil || *nt.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTrainer(ctx, t)
}

func (svc *service) Query(ctx context.Context, activeOnly bool) ([]Trainer, error) {
	return svc.repo.QueryTrainers(ctx, activeOnly)
}

func (svc *service) GetByID(ctx context.Context, id string) (Trainer, error) {
	return svc.repo.GetTrainer(ctx, id)
}

func (svc *service) Update(ctx context.Context, orig Trainer, ut UpdateTrainer) (Trainer, error) {
	t := ut.apply(orig)
	t.UpdatedAt = NowFunc().UTC()
	t, err := svc.repo.UpdateTrainer(ctx, t)
	if err != nil {
		return Trainer{}, err
	}
	if orig.PhotoPath != "" && orig.PhotoPath != t.PhotoPath {
		core.DeleteBlobQuietly(ctx, svc.blobs, svc.logger, orig.PhotoPath)
	}
	return t, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	t, err := svc.repo.GetTrainer(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteTrainer(ctx, id); err != nil {
		return err
	}
	core.DeleteBlobQuietly(ctx, svc.blobs, svc.logger, t.PhotoPath)
	return nil
}
