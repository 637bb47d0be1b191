package domain_system

import (
	"context"
	"time"

	"github.com/mediavault/content-repository/domain"
)

type JobState string

const (
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// JobStatus 对账任务最近一次运行的状态，每个任务一条记录
type JobStatus struct {
	Job        string    `bson:"_id" json:"job"`
	State      JobState  `bson:"state" json:"state"`
	StartedAt  time.Time `bson:"started_at" json:"started_at"`
	FinishedAt time.Time `bson:"finished_at" json:"finished_at"`
	Updated    int64     `bson:"updated" json:"updated"` // 写入或推送的文档数
	Failed     int64     `bson:"failed" json:"failed"`   // 跳过的文档数
	Error      string    `bson:"error" json:"error,omitempty"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

func (s *JobStatus) Key() string { return s.Job }

type JobStatusRepository interface {
	domain.ConfigRepository[JobStatus]
}

type JobStatusUsecase interface {
	GetAll(ctx context.Context) ([]*JobStatus, error)
	Get(ctx context.Context, job string) (*JobStatus, error)
}
