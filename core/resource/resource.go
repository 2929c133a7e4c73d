package resource

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/examcenter/backend/core"
)

var (
	NowFunc = time.Now // mockable

	ErrNotFound = errors.New("resource not found")
)

type Category string

const (
	CategoryApplicationForm  Category = "application_form"
	CategoryPreInterviewTask Category = "pre_interview_task"
	CategoryOther            Category = "other"
)

// Resource is a downloadable document offered to course applicants.
type Resource struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FileURL     string    `json:"file_url,omitempty"`
	FilePath    string    `json:"file_path,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	FileType    string    `json:"file_type,omitempty"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Latest holds the resource to feature for each applicant-facing category.
type Latest struct {
	ApplicationForm  *Resource `json:"application_form"`
	PreInterviewTask *Resource `json:"pre_interview_task"`
}

type NewResource struct {
	Category    Category `json:"category" validate:"required,oneof=application_form pre_interview_task other"`
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	FileURL     string   `json:"file_url" validate:"omitempty,url"`
	FilePath    string   `json:"file_path"`
	FileName    string   `json:"file_name" validate:"max=255"`
	FileType    string   `json:"file_type" validate:"max=100"`
	Order       int      `json:"order"`
	IsActive    *bool    `json:"is_active"`
}

func (nr *NewResource) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.Description = core.CleanString(nr.Description)
	nr.FileURL = core.CleanString(nr.FileURL)
	nr.FilePath = core.CleanString(nr.FilePath)
	return validate.Struct(nr)
}

type UpdateResource struct {
	Category    *Category `json:"category" validate:"omitempty,oneof=application_form pre_interview_task other"`
	Title       *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	FileURL     *string   `json:"file_url" validate:"omitempty,url"`
	FilePath    *string   `json:"file_path"`
	FileName    *string   `json:"file_name" validate:"omitempty,max=255"`
	FileType    *string   `json:"file_type" validate:"omitempty,max=100"`
	Order       *int      `json:"order"`
	IsActive    *bool     `json:"is_active"`
}

func (ur *UpdateResource) Validate(validate *validator.Validate) error {
	return validate.Struct(ur)
}

func (ur UpdateResource) apply(r Resource) Resource {
	if ur.Category != nil {
		r.Category = *ur.Category
	}
	if ur.Title != nil {
		r.Title = core.CleanString(*ur.Title)
	}
	if ur.Description != nil {
		r.Description = core.CleanString(*ur.Description)
	}
	if ur.FileURL != nil {
		r.FileURL = core.CleanString(*ur.FileURL)
	}
	if ur.FilePath != nil {
		r.FilePath = core.CleanString(*ur.FilePath)
	}
	if ur.FileName != nil {
		r.FileName = *ur.FileName
	}
	if ur.FileType != nil {
		r.FileType = *ur.FileType
	}
	if ur.Order != nil {
		r.Order = *ur.Order
	}
	if ur.IsActive != nil {
		r.IsActive = *ur.IsActive
	}
	return r
}

type (
	Repository interface {
		CreateResource(ctx context.Context, r Resource) (Resource, error)
		// QueryResources returns resources ordered by category, display order, then title.
		QueryResources(ctx context.Context, activeOnly bool) ([]Resource, error)
		GetResource(ctx context.Context, id string) (Resource, error)
		UpdateResource(ctx context.Context, r Resource) (Resource, error)
		DeleteResource(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, nr NewResource) (Resource, error)
		Query(ctx context.Context, activeOnly bool) ([]Resource, error)
		Latest(ctx context.Context) (Latest, error)
		GetByID(ctx context.Context, id string) (Resource, error)
		Update(ctx context.Context, orig Resource, ur UpdateResource) (Resource, error)
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

func (svc *service) Create(ctx context.Context, nr NewResource) (Resource, error) {
	now := NowFunc().UTC()
	r := Resource{
		Category:    nr.Category,
		Title:       nr.Title,
		Description: nr.Description,
		FileURL:     nr.FileURL,
		FilePath:    nr.FilePath,
		FileName:    nr.FileName,
		FileType:    nr.FileType,
		Order:       nr.Order,
		IsActive:    nr.IsActive == nil || *nr.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateResource(ctx, r)
}

func (svc *service) Query(ctx context.Context, activeOnly bool) ([]Resource, error) {
	return svc.repo.QueryResources(ctx, activeOnly)
}

func (svc *service) Latest(ctx context.Context) (Latest, error) {
	resources, err := svc.repo.QueryResources(ctx, true /* activeOnly */)
	if err != nil {
		return Latest{}, pkgerrors.Wrap(err, "querying active resources")
	}
	return Latest{
		ApplicationForm:  pickBest(resources, CategoryApplicationForm),
		PreInterviewTask: pickBest(resources, CategoryPreInterviewTask),
	}, nil
}

// pickBest returns the resource of cat with the lowest order; ties go to the most recently updated.
func pickBest(resources []Resource, cat Category) *Resource {
	var best *Resource
	for i := range resources {
		cur := &resources[i]
		if cur.Category != cat {
			continue
		}
		switch {
		case best == nil:
			best = cur
		case cur.Order < best.Order:
			best = cur
		case cur.Order == best.Order && cur.UpdatedAt.After(best.UpdatedAt):
			best = cur
		}
	}
	if best == nil {
		return nil
	}
	r := *best
	return &r
}

func (svc *service) GetByID(ctx context.Context, id string) (Resource, error) {
	return svc.repo.GetResource(ctx, id)
}

func (svc *service) Update(ctx context.Context, orig Resource, ur UpdateResource) (Resource, error) {
	r := ur.apply(orig)
	r.UpdatedAt = NowFunc().UTC()
	r, err := svc.repo.UpdateResource(ctx, r)
	if err != nil {
		return Resource{}, err
	}
	if orig.FilePath != "" && orig.FilePath != r.FilePath {
		core.DeleteBlobQuietly(ctx, svc.blobs, svc.logger, orig.FilePath)
	}
	return r, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	r, err := svc.repo.GetResource(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteResource(ctx, id); err != nil {
		return err
	}
	core.DeleteBlobQuietly(ctx, svc.blobs, svc.logger, r.FilePath)
	return nil
}
