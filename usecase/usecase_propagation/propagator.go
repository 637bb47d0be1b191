package usecase_propagation

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/usecase/usecase_hook"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	jobHook        = "hook"
	jobPropagation = "propagation"
)

// Propagator 在写路径上维护派生字段：
// 保存的文档自身同步重算；反向查找引用它的文档全部放进任务队列异步执行。
// 异步任务只把来源确实变化的字段标记为缺失再重算，重算失败时字段保持缺失，由补全任务修复
type Propagator struct {
	store     content_interface.Store
	refresher *Refresher
	queue     *usecase_hook.TaskQueue
	log       zerolog.Logger
}

func NewPropagator(
	store content_interface.Store,
	refresher *Refresher,
	queue *usecase_hook.TaskQueue,
	log zerolog.Logger,
) *Propagator {
	return &Propagator{
		store:     store,
		refresher: refresher,
		queue:     queue,
		log:       log,
	}
}

func (p *Propagator) Register(hooks *usecase_hook.Manager) {
	hooks.AddHook(content_models.KindEntity, usecase_hook.EventAfterSave, p.afterEntitySave)
	hooks.AddHook(content_models.KindEntity, usecase_hook.EventAfterDelete, p.afterEntityDelete)
	hooks.AddHook(content_models.KindCompilation, usecase_hook.EventAfterSave, p.afterContainerSave)
	hooks.AddHook(content_models.KindProfile, usecase_hook.EventAfterSave, p.afterContainerSave)
	hooks.AddHook(content_models.KindDigitalEntity, usecase_hook.EventAfterSave, p.afterDigitalEntityChange)
	hooks.AddHook(content_models.KindDigitalEntity, usecase_hook.EventAfterDelete, p.afterDigitalEntityChange)
}

// containerSet 需要重算的容器，按类型分组
type containerSet map[content_models.Kind][]primitive.ObjectID

func (p *Propagator) afterEntitySave(
	ctx context.Context,
	doc content_models.Document,
	actor *domain.Actor,
) (content_models.Document, error) {
	if actor == nil {
		return doc, nil
	}
	entity, ok := doc.(*content_models.Entity)
	if !ok {
		return doc, fmt.Errorf("unexpected document %T", doc)
	}

	id := entity.ID
	changed, err := p.refresher.RefreshFields(ctx, jobHook, content_models.KindEntity, id, ScopeAll)
	retry := err != nil

	// 同步重算失败时由任务重试，保证容器最终一致
	p.queue.Submit("entity saved "+id.Hex(), func(ctx context.Context) error {
		fields := changed
		if retry {
			var err error
			fields, err = p.refresher.RefreshFields(ctx, jobPropagation, content_models.KindEntity, id, ScopeAll)
			if err != nil {
				return err
			}
		}

		var errs []error
		if _, err := p.refresher.Index(ctx, content_models.KindEntity, id); err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, p.propagate(ctx, []primitive.ObjectID{id}, filterableOnly(fields)))
		return errors.Join(errs...)
	})
	return doc, err
}

func (p *Propagator) afterEntityDelete(
	ctx context.Context,
	doc content_models.Document,
	actor *domain.Actor,
) (content_models.Document, error) {
	if actor == nil {
		return doc, nil
	}

	id := doc.DocumentID()
	fields := content_models.FilterableFields
	if d, ok := doc.(content_models.Derivable); ok {
		fields = contributedFields(*d.Derived())
	}
	if len(fields) == 0 {
		return doc, nil
	}

	p.queue.Submit("entity deleted "+id.Hex(), func(ctx context.Context) error {
		return p.propagate(ctx, []primitive.ObjectID{id}, fields)
	})
	return doc, nil
}

func (p *Propagator) afterContainerSave(
	ctx context.Context,
	doc content_models.Document,
	actor *domain.Actor,
) (content_models.Document, error) {
	if actor == nil {
		return doc, nil
	}

	kind, id := doc.DocumentKind(), doc.DocumentID()
	if _, err := p.refresher.Refresh(ctx, jobHook, kind, id, ScopeAll); err != nil {
		return doc, err
	}
	if Indexable(kind) {
		p.queue.Submit(string(kind)+" saved "+id.Hex(), func(ctx context.Context) error {
			_, err := p.refresher.Index(ctx, kind, id)
			return err
		})
	}
	return doc, nil
}

// afterDigitalEntityChange 许可证只来自 DigitalEntity。
// 引用它的 Entity 在任务中重算，只有许可证真正变化的 Entity 才会影响容器
func (p *Propagator) afterDigitalEntityChange(
	ctx context.Context,
	doc content_models.Document,
	actor *domain.Actor,
) (content_models.Document, error) {
	if actor == nil {
		return doc, nil
	}

	deID := doc.DocumentID()
	p.queue.Submit("digital entity changed "+deID.Hex(), func(ctx context.Context) error {
		entityIDs, err := p.store.Entities.FindIDsByDigitalEntity(ctx, deID)
		if err != nil {
			return err
		}

		var (
			errs    []error
			changed []primitive.ObjectID
			fields  []string
		)
		for _, id := range entityIDs {
			written, err := p.refresher.RefreshFields(ctx, jobPropagation, content_models.KindEntity, id, ScopeFilterable)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if written = filterableOnly(written); len(written) > 0 {
				changed = append(changed, id)
				fields = union(fields, written)
			}
			// 搜索文档包含 DigitalEntity 的标题与描述
			if _, err := p.refresher.Index(ctx, content_models.KindEntity, id); err != nil {
				errs = append(errs, err)
			}
		}
		errs = append(errs, p.propagate(ctx, changed, fields))
		return errors.Join(errs...)
	})
	return doc, nil
}

// propagate 在任务中执行：查找包含这些 Entity 的容器，清除 fields 后重算
func (p *Propagator) propagate(ctx context.Context, entityIDs []primitive.ObjectID, fields []string) error {
	if len(entityIDs) == 0 || len(fields) == 0 {
		return nil
	}
	set, err := p.findContainers(ctx, entityIDs)
	if err != nil {
		return err
	}
	for kind, ids := range set {
		if err := p.store.Derived.UnsetDerived(ctx, kind, ids, fields); err != nil {
			return err
		}
	}
	return p.refreshContainers(ctx, set)
}

func (p *Propagator) findContainers(ctx context.Context, entityIDs []primitive.ObjectID) (containerSet, error) {
	set := containerSet{}
	seen := map[primitive.ObjectID]bool{}

	for _, entityID := range entityIDs {
		compilations, err := p.store.Compilations.FindIDsByEntity(ctx, entityID)
		if err != nil {
			return nil, err
		}
		profiles, err := p.store.Profiles.FindIDsByEntity(ctx, entityID)
		if err != nil {
			return nil, err
		}
		for _, id := range compilations {
			if !seen[id] {
				seen[id] = true
				set[content_models.KindCompilation] = append(set[content_models.KindCompilation], id)
			}
		}
		for _, id := range profiles {
			if !seen[id] {
				seen[id] = true
				set[content_models.KindProfile] = append(set[content_models.KindProfile], id)
			}
		}
	}
	return set, nil
}

// refreshContainers 单个容器失败不影响其他容器
func (p *Propagator) refreshContainers(ctx context.Context, set containerSet) error {
	var errs []error
	for _, kind := range []content_models.Kind{content_models.KindCompilation, content_models.KindProfile} {
		for _, id := range set[kind] {
			if _, err := p.refresher.Refresh(ctx, jobPropagation, kind, id, ScopeFilterable); err != nil {
				p.log.Warn().Err(err).Str("kind", string(kind)).Str("id", id.Hex()).Msg("容器派生字段重算失败")
				errs = append(errs, err)
				continue
			}
			if _, err := p.refresher.Index(ctx, kind, id); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// contributedFields 被删除的 Entity 对容器有贡献的字段；字段缺失时无法判断，按有贡献处理
func contributedFields(d content_models.DerivedFields) []string {
	var fields []string
	if d.Licenses == nil || len(*d.Licenses) > 0 {
		fields = append(fields, content_models.FieldLicenses)
	}
	if d.MediaTypes == nil || len(*d.MediaTypes) > 0 {
		fields = append(fields, content_models.FieldMediaTypes)
	}
	if d.Downloadable == nil || *d.Downloadable {
		fields = append(fields, content_models.FieldDownloadable)
	}
	return fields
}

func filterableOnly(fields []string) []string {
	var out []string
	for _, f := range fields {
		if slices.Contains(content_models.FilterableFields, f) {
			out = append(out, f)
		}
	}
	return out
}

func union(a, b []string) []string {
	for _, f := range b {
		if !slices.Contains(a, f) {
			a = append(a, f)
		}
	}
	return a
}
