package usecase_propagation

import (
	"context"
	"fmt"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/util/metrics"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scope 选择需要重新计算的派生字段组
type Scope uint8

const (
	ScopeFilterable Scope = 1 << iota
	ScopeSortable

	ScopeAll = ScopeFilterable | ScopeSortable
)

// Refresher 重新计算单个文档的派生字段并写回，同时负责把文档推送到搜索索引。
// 钩子回调、异步传播任务和对账任务共用同一套计算路径
type Refresher struct {
	store    content_interface.Store
	resolver *Resolver
	search   content_interface.SearchIndex
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

func NewRefresher(
	store content_interface.Store,
	resolver *Resolver,
	search content_interface.SearchIndex,
	log zerolog.Logger,
	m *metrics.Metrics,
) *Refresher {
	return &Refresher{
		store:    store,
		resolver: resolver,
		search:   search,
		log:      log,
		metrics:  m,
	}
}

// Refresh 返回是否发生了写入。文档已被删除时什么也不做
func (r *Refresher) Refresh(
	ctx context.Context,
	job string,
	kind content_models.Kind,
	id primitive.ObjectID,
	scope Scope,
) (bool, error) {
	fields, err := r.RefreshFields(ctx, job, kind, id, scope)
	return len(fields) > 0, err
}

// RefreshFields 与 Refresh 相同，返回实际写入的字段名
func (r *Refresher) RefreshFields(
	ctx context.Context,
	job string,
	kind content_models.Kind,
	id primitive.ObjectID,
	scope Scope,
) ([]string, error) {
	if !kind.HasDerived() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotDerivable, kind)
	}

	resolved, err := r.resolver.Resolve(ctx, kind, content_models.NewReference(id))
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return nil, nil
	}

	changes, err := r.diff(resolved, scope)
	if err != nil {
		return nil, err
	}
	if changes.IsEmpty() {
		return nil, nil
	}

	if err := r.store.Derived.SetDerived(ctx, kind, id, changes); err != nil {
		return nil, err
	}
	fields := changes.Fields()
	r.metrics.DerivedUpdates.WithLabelValues(job, string(kind)).Inc()
	r.log.Debug().
		Str("job", job).
		Str("kind", string(kind)).
		Str("id", id.Hex()).
		Strs("fields", fields).
		Msg("派生字段已更新")
	return fields, nil
}

func (r *Refresher) diff(resolved content_models.Resolved, scope Scope) (content_models.DerivedFields, error) {
	filterable, sortable, err := compute(resolved, scope)
	if err != nil {
		return content_models.DerivedFields{}, err
	}
	derivable, ok := resolved.Document().(content_models.Derivable)
	if !ok {
		return content_models.DerivedFields{}, fmt.Errorf("%w: %s", domain.ErrNotDerivable, resolved.ResolvedKind())
	}
	return DiffDerived(*derivable.Derived(), filterable, sortable), nil
}

func compute(
	resolved content_models.Resolved,
	scope Scope,
) (*content_models.FilterableProperties, *content_models.SortableProperties, error) {
	var (
		filterable *content_models.FilterableProperties
		sortable   *content_models.SortableProperties
	)
	if scope&ScopeFilterable != 0 {
		f, err := ComputeFilterable(resolved)
		if err != nil {
			return nil, nil, err
		}
		filterable = &f
	}
	if scope&ScopeSortable != 0 {
		s, err := ComputeSortable(resolved.Document())
		if err != nil {
			return nil, nil, err
		}
		sortable = &s
	}
	return filterable, sortable, nil
}

// Indexable 进入搜索索引的类型
func Indexable(kind content_models.Kind) bool {
	return kind == content_models.KindEntity || kind == content_models.KindCompilation
}

// Index 展开文档并推送到搜索索引。未发布的 Entity 与已删除的文档跳过，返回是否推送
func (r *Refresher) Index(ctx context.Context, kind content_models.Kind, id primitive.ObjectID) (bool, error) {
	if !Indexable(kind) {
		return false, nil
	}
	resolved, err := r.resolver.Resolve(ctx, kind, content_models.NewReference(id))
	if err != nil {
		return false, err
	}
	if resolved == nil {
		return false, nil
	}
	if e, ok := resolved.(*content_models.ResolvedEntity); ok && !e.Entity.Published() {
		return false, nil
	}

	filterable, sortable, err := compute(resolved, ScopeAll)
	if err != nil {
		return false, err
	}
	doc := BuildSearchDocument(resolved, *filterable, *sortable)
	if err := r.search.UpdateDocument(ctx, kind, doc); err != nil {
		r.metrics.SearchIndexUpdates.WithLabelValues(string(kind), "failed").Inc()
		return false, fmt.Errorf("推送搜索索引失败(%s %s): %w", kind, id.Hex(), err)
	}
	r.metrics.SearchIndexUpdates.WithLabelValues(string(kind), "succeeded").Inc()
	return true, nil
}
