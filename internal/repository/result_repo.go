package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradeflow/assess-api/internal/models"
)

// ResultRepository defines data operations for results.
type ResultRepository interface {
	GetByID(ctx context.Context, id uint) (models.Result, error)
	Create(ctx context.Context, result *models.Result) error
	Update(ctx context.Context, result *models.Result) error
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository instantiates the repository.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Result{}).
		Preload("Assessor").
		Preload("Participation").
		Preload("Participation.Student").
		Preload("Participation.TeamOwner").
		Preload("Participation.Exercise").
		Preload("Participation.Exercise.Course")
}

func (r *resultRepository) GetByID(ctx context.Context, id uint) (models.Result, error) {
	var result models.Result
	if err := r.baseQuery(ctx).First(&result, id).Error; err != nil {
		return models.Result{}, err
	}

	return result, nil
}

func (r *resultRepository) Create(ctx context.Context, result *models.Result) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *resultRepository) Update(ctx context.Context, result *models.Result) error {
	return r.db.WithContext(ctx).Save(result).Error
}
