package domain_util

import (
	"sync/atomic"
	"time"

	"github.com/mediavault/content-repository/domain/domain_system"
)

// TaskProgress 后台任务的运行进度，计数可以并发累加
type TaskProgress struct {
	ID        string
	StartedAt time.Time

	updated atomic.Int64
	failed  atomic.Int64
}

func NewTaskProgress(id string, startedAt time.Time) *TaskProgress {
	return &TaskProgress{ID: id, StartedAt: startedAt}
}

func (tp *TaskProgress) AddUpdated(n int64) { tp.updated.Add(n) }
func (tp *TaskProgress) AddFailed(n int64)  { tp.failed.Add(n) }
func (tp *TaskProgress) Updated() int64     { return tp.updated.Load() }
func (tp *TaskProgress) Failed() int64      { return tp.failed.Load() }

// Running 任务开始时的状态
func (tp *TaskProgress) Running() *domain_system.JobStatus {
	return &domain_system.JobStatus{
		Job:       tp.ID,
		State:     domain_system.JobRunning,
		StartedAt: tp.StartedAt,
	}
}

// Finished err 为 nil 时记为成功；单个文档的失败只计入 Failed，不影响状态
func (tp *TaskProgress) Finished(finishedAt time.Time, err error) *domain_system.JobStatus {
	status := &domain_system.JobStatus{
		Job:        tp.ID,
		State:      domain_system.JobSucceeded,
		StartedAt:  tp.StartedAt,
		FinishedAt: finishedAt,
		Updated:    tp.Updated(),
		Failed:     tp.Failed(),
	}
	if err != nil {
		status.State = domain_system.JobFailed
		status.Error = err.Error()
	}
	return status
}
