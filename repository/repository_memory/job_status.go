package repository_memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/mediavault/content-repository/domain/domain_system"
)

type JobStatusRepository struct {
	mu       sync.Mutex
	statuses map[string]domain_system.JobStatus
	history  []domain_system.JobStatus
}

func NewJobStatusRepository() *JobStatusRepository {
	return &JobStatusRepository{statuses: make(map[string]domain_system.JobStatus)}
}

func (r *JobStatusRepository) Get(_ context.Context, key string) (*domain_system.JobStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.statuses[key]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *JobStatusRepository) Upsert(_ context.Context, doc *domain_system.JobStatus) error {
	if doc == nil || doc.Job == "" {
		return errors.New("job status key cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.UpdatedAt = time.Now().UTC()
	r.statuses[doc.Job] = *doc
	r.history = append(r.history, *doc)
	return nil
}

func (r *JobStatusRepository) GetAll(_ context.Context) ([]*domain_system.JobStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain_system.JobStatus, 0, len(r.statuses))
	for _, s := range r.statuses {
		s := s
		all = append(all, &s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Job < all[j].Job })
	return all, nil
}

// History 按写入顺序返回全部状态变化
func (r *JobStatusRepository) History() []domain_system.JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain_system.JobStatus(nil), r.history...)
}
