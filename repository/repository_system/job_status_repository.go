package repository_system

import (
	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_system"
	"github.com/mediavault/content-repository/mongo"
	"github.com/mediavault/content-repository/repository"
)

// NewJobStatusRepository 任务状态只需要通用的配置类读写
func NewJobStatusRepository(db mongo.Database) domain_system.JobStatusRepository {
	return repository.NewConfigMongoRepository[domain_system.JobStatus, *domain_system.JobStatus](db, domain.CollectionJobStatus)
}
