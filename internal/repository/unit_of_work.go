package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepositories bundles the repositories bound to one open transaction.
type TxRepositories struct {
	Complaints ComplaintRepository
	Responses  ComplaintResponseRepository
	Results    ResultRepository
}

// UnitOfWork runs a function against a single database transaction so that
// lock hand-offs and complaint resolutions commit or roll back as one unit.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx TxRepositories) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork instantiates a gorm-backed unit of work.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(tx TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Complaints: NewComplaintRepository(tx),
			Responses:  NewComplaintResponseRepository(tx),
			Results:    NewResultRepository(tx),
		})
	})
}
