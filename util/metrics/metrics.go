// Package metrics 派生属性引擎的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// 钩子
	HookFailures *prometheus.CounterVec

	// 异步传播
	PropagationTasks *prometheus.CounterVec
	TaskQueueDepth   prometheus.Gauge

	// 对账任务
	DerivedUpdates     *prometheus.CounterVec
	JobFailures        *prometheus.CounterVec
	PopularityDecayed  *prometheus.CounterVec
	SearchIndexUpdates *prometheus.CounterVec
}

// New 在 reg 上注册全部指标；reg 为 nil 时只创建不注册，供测试使用
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HookFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_hook_failures_total",
				Help: "Hook callbacks that returned an error or panicked",
			},
			[]string{"kind", "event"},
		),
		PropagationTasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_propagation_tasks_total",
				Help: "Deferred propagation tasks by outcome",
			},
			[]string{"status"},
		),
		TaskQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "content_task_queue_depth",
				Help: "Propagation tasks waiting for a worker",
			},
		),
		DerivedUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_derived_updates_total",
				Help: "Documents whose derived properties were written",
			},
			[]string{"job", "kind"},
		),
		JobFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_job_failures_total",
				Help: "Per-document failures inside reconciliation jobs",
			},
			[]string{"job", "kind"},
		),
		PopularityDecayed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_popularity_decayed_total",
				Help: "Documents whose hit counter was decremented",
			},
			[]string{"kind"},
		),
		SearchIndexUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_search_index_updates_total",
				Help: "Documents pushed to the search index by outcome",
			},
			[]string{"kind", "status"},
		),
	}
}
