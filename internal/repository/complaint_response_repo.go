package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gradeflow/assess-api/internal/models"
)

// ComplaintResponseRepository defines data operations for complaint
// responses. Create relies on the unique index over complaint_id: a lost
// insert race surfaces as ErrDuplicateResponse.
type ComplaintResponseRepository interface {
	GetByID(ctx context.Context, id uint) (models.ComplaintResponse, error)
	GetByComplaintID(ctx context.Context, complaintID uint) (models.ComplaintResponse, error)
	Create(ctx context.Context, response *models.ComplaintResponse) error
	Update(ctx context.Context, response *models.ComplaintResponse) error
	Delete(ctx context.Context, id uint) error
}

type complaintResponseRepository struct {
	db *gorm.DB
}

// NewComplaintResponseRepository instantiates the repository.
func NewComplaintResponseRepository(db *gorm.DB) ComplaintResponseRepository {
	return &complaintResponseRepository{db: db}
}

func (r *complaintResponseRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ComplaintResponse{}).
		Preload("Reviewer").
		Preload("Complaint").
		Preload("Complaint.Result").
		Preload("Complaint.Result.Assessor").
		Preload("Complaint.Result.Participation").
		Preload("Complaint.Result.Participation.Student").
		Preload("Complaint.Result.Participation.TeamOwner").
		Preload("Complaint.Result.Participation.Exercise").
		Preload("Complaint.Result.Participation.Exercise.Course").
		Preload("Complaint.Participant")
}

func (r *complaintResponseRepository) GetByID(ctx context.Context, id uint) (models.ComplaintResponse, error) {
	var response models.ComplaintResponse
	if err := r.baseQuery(ctx).First(&response, id).Error; err != nil {
		return models.ComplaintResponse{}, err
	}

	return response, nil
}

func (r *complaintResponseRepository) GetByComplaintID(ctx context.Context, complaintID uint) (models.ComplaintResponse, error) {
	var response models.ComplaintResponse
	if err := r.baseQuery(ctx).Where("complaint_id = ?", complaintID).First(&response).Error; err != nil {
		return models.ComplaintResponse{}, err
	}

	return response, nil
}

func (r *complaintResponseRepository) Create(ctx context.Context, response *models.ComplaintResponse) error {
	if err := r.db.WithContext(ctx).Create(response).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateResponse
		}
		return err
	}

	return nil
}

func (r *complaintResponseRepository) Update(ctx context.Context, response *models.ComplaintResponse) error {
	return r.db.WithContext(ctx).Save(response).Error
}

func (r *complaintResponseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ComplaintResponse{}, id).Error
}
