package usecase_hook

import (
	"context"
	"fmt"
	"sync"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/util/metrics"
	"github.com/rs/zerolog"
)

type Event string

const (
	EventAfterSave   Event = "afterSave"
	EventAfterDelete Event = "afterDelete"
)

// HookFunc 返回的文档替换传给下一个回调的文档；返回 nil 表示不修改
type HookFunc func(ctx context.Context, doc content_models.Document, actor *domain.Actor) (content_models.Document, error)

type hookKey struct {
	kind  content_models.Kind
	event Event
}

// Manager 按 (类型, 事件) 登记回调，触发时按登记顺序依次执行。
// 单个回调的错误或 panic 只记录日志，不影响后续回调和调用方的写操作
type Manager struct {
	mu      sync.RWMutex
	hooks   map[hookKey][]HookFunc
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewManager(log zerolog.Logger, m *metrics.Metrics) *Manager {
	return &Manager{
		hooks:   make(map[hookKey][]HookFunc),
		log:     log,
		metrics: m,
	}
}

func (m *Manager) AddHook(kind content_models.Kind, event Event, fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := hookKey{kind: kind, event: event}
	m.hooks[key] = append(m.hooks[key], fn)
}

func (m *Manager) Len(kind content_models.Kind, event Event) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hooks[hookKey{kind: kind, event: event}])
}

// Fire 返回经过全部回调后的文档
func (m *Manager) Fire(
	ctx context.Context,
	kind content_models.Kind,
	event Event,
	doc content_models.Document,
	actor *domain.Actor,
) content_models.Document {
	m.mu.RLock()
	callbacks := append([]HookFunc(nil), m.hooks[hookKey{kind: kind, event: event}]...)
	m.mu.RUnlock()

	current := doc
	for i, fn := range callbacks {
		next, err := invoke(ctx, fn, current, actor)
		if err != nil {
			m.log.Error().Err(err).
				Str("kind", string(kind)).
				Str("event", string(event)).
				Int("hook", i).
				Msg("钩子执行失败")
			m.metrics.HookFailures.WithLabelValues(string(kind), string(event)).Inc()
			continue
		}
		if next != nil {
			current = next
		}
	}
	return current
}

func invoke(
	ctx context.Context,
	fn HookFunc,
	doc content_models.Document,
	actor *domain.Actor,
) (out content_models.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("hook panic: %v", r)
		}
	}()
	return fn(ctx, doc, actor)
}
