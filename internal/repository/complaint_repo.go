package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradeflow/assess-api/internal/models"
)

// ComplaintRepository defines data operations for complaints.
type ComplaintRepository interface {
	GetByID(ctx context.Context, id uint) (models.Complaint, error)
	ExistsByResultAndType(ctx context.Context, resultID uint, complaintType string) (bool, error)
	Create(ctx context.Context, complaint *models.Complaint) error
	Update(ctx context.Context, complaint *models.Complaint) error
}

type complaintRepository struct {
	db *gorm.DB
}

// NewComplaintRepository instantiates the repository.
func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Complaint{}).
		Preload("Result").
		Preload("Result.Assessor").
		Preload("Result.Participation").
		Preload("Result.Participation.Student").
		Preload("Result.Participation.TeamOwner").
		Preload("Result.Participation.Exercise").
		Preload("Result.Participation.Exercise.Course").
		Preload("Participant")
}

func (r *complaintRepository) GetByID(ctx context.Context, id uint) (models.Complaint, error) {
	var complaint models.Complaint
	if err := r.baseQuery(ctx).First(&complaint, id).Error; err != nil {
		return models.Complaint{}, err
	}

	return complaint, nil
}

func (r *complaintRepository) ExistsByResultAndType(ctx context.Context, resultID uint, complaintType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Complaint{}).
		Where("result_id = ?", resultID).
		Where("complaint_type = ?", complaintType).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *complaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Create(complaint).Error
}

func (r *complaintRepository) Update(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Save(complaint).Error
}
