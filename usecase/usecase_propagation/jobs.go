package usecase_propagation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/domain/domain_system"
	"github.com/mediavault/content-repository/domain/domain_util"
	"github.com/mediavault/content-repository/util/clock"
	"github.com/mediavault/content-repository/util/metrics"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	JobEnsureFilterable = "ensure_filterable"
	JobEnsureSortable   = "ensure_sortable"
	JobDecay            = "decrease_popularity"
	JobSearchIndex      = "ensure_search_index"
)

// Jobs 对账任务。全部幂等，可以与写路径和彼此并发执行；
// 单个文档失败只记录日志并跳过，不中断整个任务
type Jobs struct {
	store     content_interface.Store
	refresher *Refresher
	status    domain_system.JobStatusRepository
	clock     clock.Clock
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

func NewJobs(
	store content_interface.Store,
	refresher *Refresher,
	status domain_system.JobStatusRepository,
	clk clock.Clock,
	log zerolog.Logger,
	m *metrics.Metrics,
) *Jobs {
	return &Jobs{
		store:     store,
		refresher: refresher,
		status:    status,
		clock:     clk,
		log:       log,
		metrics:   m,
	}
}

// EnsureFilterableProperties 补全缺失的可过滤字段
func (j *Jobs) EnsureFilterableProperties(ctx context.Context) error {
	return j.track(ctx, JobEnsureFilterable, func(p *domain_util.TaskProgress) error {
		return j.backfill(ctx, p, content_models.FilterableFields, ScopeFilterable)
	})
}

// EnsureSortableProperties 补全缺失的可排序字段
func (j *Jobs) EnsureSortableProperties(ctx context.Context) error {
	return j.track(ctx, JobEnsureSortable, func(p *domain_util.TaskProgress) error {
		return j.backfill(ctx, p, content_models.SortableFields, ScopeSortable)
	})
}

// track 记录任务开始与结束状态；没有配置状态仓储时只执行任务
func (j *Jobs) track(ctx context.Context, job string, run func(*domain_util.TaskProgress) error) error {
	progress := domain_util.NewTaskProgress(job, j.clock.Now())
	j.saveStatus(ctx, progress.Running())
	err := run(progress)
	j.saveStatus(ctx, progress.Finished(j.clock.Now(), err))
	return err
}

func (j *Jobs) saveStatus(ctx context.Context, status *domain_system.JobStatus) {
	if j.status == nil {
		return
	}
	// 任务被取消时仍然记录最终状态
	if err := j.status.Upsert(context.WithoutCancel(ctx), status); err != nil {
		j.log.Warn().Err(err).Str("job", status.Job).Msg("保存任务状态失败")
	}
}

func (j *Jobs) backfill(ctx context.Context, p *domain_util.TaskProgress, fields []string, scope Scope) error {
	job := p.ID
	var errs []error
	for _, kind := range content_models.DerivedKinds {
		updated, failed := 0, 0
		err := j.store.Derived.ForEachMissing(ctx, kind, fields, func(id primitive.ObjectID) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			changed, err := j.refresher.Refresh(ctx, job, kind, id, scope)
			if err != nil {
				failed++
				j.metrics.JobFailures.WithLabelValues(job, string(kind)).Inc()
				j.log.Warn().Err(err).
					Str("job", job).
					Str("kind", string(kind)).
					Str("id", id.Hex()).
					Msg("文档派生字段补全失败，跳过")
				return nil
			}
			if changed {
				updated++
			}
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s(%s): %w", job, kind, err))
		}
		p.AddUpdated(int64(updated))
		p.AddFailed(int64(failed))
		j.log.Info().
			Str("job", job).
			Str("kind", string(kind)).
			Int("updated", updated).
			Int("failed", failed).
			Msg("派生字段补全完成")
	}
	return errors.Join(errs...)
}

// DecreasePopularity 所有类型的访问计数减一，已为 0 的保持不变
func (j *Jobs) DecreasePopularity(ctx context.Context) error {
	return j.track(ctx, JobDecay, func(p *domain_util.TaskProgress) error {
		var errs []error
		for _, kind := range content_models.DerivedKinds {
			n, err := j.store.Derived.DecrementHits(ctx, kind)
			if err != nil {
				j.metrics.JobFailures.WithLabelValues(JobDecay, string(kind)).Inc()
				errs = append(errs, err)
				continue
			}
			p.AddUpdated(n)
			j.metrics.PopularityDecayed.WithLabelValues(string(kind)).Add(float64(n))
			j.log.Debug().Str("kind", string(kind)).Int64("decayed", n).Msg("访问计数衰减")
		}
		return errors.Join(errs...)
	})
}

// DecreasePopularityTimer 在下一个整点首次执行，之后每小时执行一次，直到 ctx 结束
func (j *Jobs) DecreasePopularityTimer(ctx context.Context) {
	now := j.clock.Now()
	delay := untilNextHour(now)

	timer := j.clock.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			return
		}
		j.runDecay(ctx)

		ticker := j.clock.NewTicker(time.Hour)
		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					j.runDecay(ctx)
				}
			}
		}()
	})

	go func() {
		<-ctx.Done()
		timer.Stop()
	}()

	j.log.Info().Dur("first_run_in", delay).Msg("访问计数衰减定时器已启动")
}

func (j *Jobs) runDecay(ctx context.Context) {
	if err := j.DecreasePopularity(ctx); err != nil {
		j.log.Error().Err(err).Msg("访问计数衰减失败")
	}
}

func untilNextHour(now time.Time) time.Duration {
	next := now.Truncate(time.Hour).Add(time.Hour)
	return next.Sub(now)
}

// EnsureSearchIndex 全量推送已发布的 Entity 与全部 Compilation
func (j *Jobs) EnsureSearchIndex(ctx context.Context) error {
	return j.track(ctx, JobSearchIndex, func(p *domain_util.TaskProgress) error {
		return j.ensureSearchIndex(ctx, p)
	})
}

func (j *Jobs) ensureSearchIndex(ctx context.Context, p *domain_util.TaskProgress) error {
	pushed, failed := 0, 0
	index := func(kind content_models.Kind, id primitive.ObjectID) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := j.refresher.Index(ctx, kind, id)
		if err != nil {
			failed++
			j.metrics.JobFailures.WithLabelValues(JobSearchIndex, string(kind)).Inc()
			j.log.Warn().Err(err).Str("kind", string(kind)).Str("id", id.Hex()).Msg("搜索索引同步失败，跳过")
			return nil
		}
		if ok {
			pushed++
		}
		return nil
	}

	var errs []error
	if err := j.store.Entities.ForEachPublished(ctx, func(e *content_models.Entity) error {
		return index(content_models.KindEntity, e.ID)
	}); err != nil {
		errs = append(errs, fmt.Errorf("%s(entity): %w", JobSearchIndex, err))
	}
	if err := j.store.Compilations.ForEach(ctx, func(c *content_models.Compilation) error {
		return index(content_models.KindCompilation, c.ID)
	}); err != nil {
		errs = append(errs, fmt.Errorf("%s(compilation): %w", JobSearchIndex, err))
	}

	p.AddUpdated(int64(pushed))
	p.AddFailed(int64(failed))
	j.log.Info().Int("pushed", pushed).Int("failed", failed).Msg("搜索索引同步完成")
	return errors.Join(errs...)
}

// RunStartup 启动时执行：两个补全任务并发，完成后同步搜索索引，并启动衰减定时器
func (j *Jobs) RunStartup(ctx context.Context) error {
	j.DecreasePopularityTimer(ctx)

	// 一个补全任务失败不取消另一个
	var g errgroup.Group
	g.Go(func() error { return j.EnsureFilterableProperties(ctx) })
	g.Go(func() error { return j.EnsureSortableProperties(ctx) })
	backfillErr := g.Wait()
	if backfillErr != nil {
		j.log.Error().Err(backfillErr).Msg("启动补全任务失败")
	}

	if err := j.EnsureSearchIndex(ctx); err != nil {
		return errors.Join(backfillErr, err)
	}
	return backfillErr
}
