package usecase_hook

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mediavault/content-repository/util/metrics"
	"github.com/rs/zerolog"
)

// Task 延迟执行的传播任务
type Task struct {
	ID   string
	Name string
	Run  func(ctx context.Context) error
}

// TaskQueue 无界 FIFO。Submit 从不阻塞，写请求不会因为传播积压而变慢；
// signal 容量为 1，多次入队合并为一次唤醒
type TaskQueue struct {
	mu      sync.Mutex
	tasks   []Task
	closed  bool
	signal  chan struct{}
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewTaskQueue(log zerolog.Logger, m *metrics.Metrics) *TaskQueue {
	return &TaskQueue{
		signal:  make(chan struct{}, 1),
		log:     log,
		metrics: m,
	}
}

// Submit 入队并返回任务 ID；队列关闭后返回空字符串
func (q *TaskQueue) Submit(name string, run func(ctx context.Context) error) string {
	task := Task{ID: uuid.NewString(), Name: name, Run: run}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.log.Warn().Str("task", name).Msg("队列已关闭，丢弃任务")
		return ""
	}
	q.tasks = append(q.tasks, task)
	depth := len(q.tasks)
	q.mu.Unlock()

	q.metrics.TaskQueueDepth.Set(float64(depth))
	q.notify()
	return task.ID
}

func (q *TaskQueue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *TaskQueue) tryDequeue() (Task, bool) {
	q.mu.Lock()
	if len(q.tasks) == 0 {
		q.mu.Unlock()
		return Task{}, false
	}
	task := q.tasks[0]
	q.tasks[0] = Task{}
	q.tasks = q.tasks[1:]
	remaining := len(q.tasks)
	q.mu.Unlock()

	q.metrics.TaskQueueDepth.Set(float64(remaining))
	if remaining > 0 {
		// 唤醒其他空闲 worker
		q.notify()
	}
	return task, true
}

func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Close 拒绝后续提交，已入队的任务仍可被执行
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// Run 启动 workers 个 worker 并阻塞到 ctx 结束
func (q *TaskQueue) Run(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.work(ctx)
		}()
	}
	wg.Wait()
}

func (q *TaskQueue) work(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if task, ok := q.tryDequeue(); ok {
			q.execute(ctx, task)
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-q.signal:
		}
	}
}

// RunPending 在调用方 goroutine 中执行当前队列中的全部任务（包括执行期间新提交的），返回执行数量
func (q *TaskQueue) RunPending(ctx context.Context) int {
	n := 0
	for ctx.Err() == nil {
		task, ok := q.tryDequeue()
		if !ok {
			break
		}
		q.execute(ctx, task)
		n++
	}
	return n
}

func (q *TaskQueue) execute(ctx context.Context, task Task) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panic: %v", r)
			}
		}()
		return task.Run(ctx)
	}()

	if err != nil {
		q.log.Error().Err(err).
			Str("task_id", task.ID).
			Str("task", task.Name).
			Msg("传播任务执行失败")
		q.metrics.PropagationTasks.WithLabelValues("failed").Inc()
		return
	}
	q.log.Debug().Str("task_id", task.ID).Str("task", task.Name).Msg("传播任务完成")
	q.metrics.PropagationTasks.WithLabelValues("succeeded").Inc()
}
