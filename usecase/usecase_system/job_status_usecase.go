package usecase_system

import (
	"context"
	"fmt"
	"time"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_system"
)

type jobStatusUsecase struct {
	repo    domain_system.JobStatusRepository
	timeout time.Duration
}

func NewJobStatusUsecase(repo domain_system.JobStatusRepository, timeout time.Duration) domain_system.JobStatusUsecase {
	return &jobStatusUsecase{repo: repo, timeout: timeout}
}

func (uc *jobStatusUsecase) GetAll(ctx context.Context) ([]*domain_system.JobStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.repo.GetAll(ctx)
}

func (uc *jobStatusUsecase) Get(ctx context.Context, job string) (*domain_system.JobStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	status, err := uc.repo.Get(ctx, job)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, fmt.Errorf("%w: job %s has not run", domain.ErrNotFound, job)
	}
	return status, nil
}
