package usecase_propagation

import (
	"context"
	"fmt"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultResolveDepth = 2
	// MaxResolveDepth 展开深度上限，任何调用方都不能超过
	MaxResolveDepth = 3
)

// Resolver 把存储中的引用展开成 Resolved 视图。
// 目标不存在、引用为空或存储中的引用格式错误都视为未命中；
// 只有调用方传入的标识符格式错误才返回 domain.ErrMalformedReference
type Resolver struct {
	store content_interface.Store
	depth int
}

func NewResolver(store content_interface.Store, depth int) *Resolver {
	return &Resolver{store: store, depth: clampDepth(depth, DefaultResolveDepth)}
}

func clampDepth(depth, fallback int) int {
	if depth <= 0 {
		depth = fallback
	}
	if depth > MaxResolveDepth {
		depth = MaxResolveDepth
	}
	return depth
}

func (r *Resolver) Resolve(ctx context.Context, kind content_models.Kind, ref content_models.Reference) (content_models.Resolved, error) {
	return r.ResolveDepth(ctx, kind, ref, r.depth)
}

// ResolveHex 解析十六进制标识符后展开
func (r *Resolver) ResolveHex(ctx context.Context, kind content_models.Kind, hex string) (content_models.Resolved, error) {
	ref := content_models.ParseReference(hex)
	if ref.IsZero() {
		return nil, fmt.Errorf("%w: empty identifier", domain.ErrMalformedReference)
	}
	return r.Resolve(ctx, kind, ref)
}

// ResolveDepth depth 为 0 时只加载文档本身，所有出边引用记入 Pending
func (r *Resolver) ResolveDepth(
	ctx context.Context,
	kind content_models.Kind,
	ref content_models.Reference,
	depth int,
) (content_models.Resolved, error) {
	if ref.Malformed() {
		return nil, fmt.Errorf("%w: %q", domain.ErrMalformedReference, ref.Raw)
	}
	if depth < 0 {
		depth = 0
	}
	if depth > MaxResolveDepth {
		depth = MaxResolveDepth
	}

	switch kind {
	case content_models.KindDigitalEntity:
		if !ref.Valid() {
			return nil, nil
		}
		de, err := r.store.DigitalEntities.GetByID(ctx, ref.ID)
		if err != nil || de == nil {
			return nil, err
		}
		return &content_models.ResolvedDigitalEntity{DigitalEntity: de}, nil
	case content_models.KindEntity:
		if !ref.Valid() {
			return nil, nil
		}
		resolved, err := r.resolveEntity(ctx, ref.ID, depth)
		if err != nil || resolved == nil {
			return nil, err
		}
		return resolved, nil
	case content_models.KindCompilation, content_models.KindProfile:
		if !ref.Valid() {
			return nil, nil
		}
		resolved, err := r.resolveContainer(ctx, kind, ref.ID, depth)
		if err != nil || resolved == nil {
			return nil, err
		}
		return resolved, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, string(kind))
}

func (r *Resolver) resolveEntity(ctx context.Context, id primitive.ObjectID, depth int) (*content_models.ResolvedEntity, error) {
	entity, err := r.store.Entities.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("加载Entity失败(%s): %w", id.Hex(), err)
	}
	if entity == nil {
		return nil, nil
	}

	resolved := &content_models.ResolvedEntity{Entity: entity}
	ref := entity.RelatedDigitalEntity
	switch {
	case ref.IsZero():
	case depth <= 0:
		resolved.Pending = append(resolved.Pending, ref)
	case !ref.Valid():
		// 存储中的脏引用，按未命中处理
	default:
		de, err := r.store.DigitalEntities.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("加载DigitalEntity失败(%s): %w", ref.ID.Hex(), err)
		}
		resolved.DigitalEntity = de
	}
	return resolved, nil
}

func (r *Resolver) loadContainer(ctx context.Context, kind content_models.Kind, id primitive.ObjectID) (content_models.Container, error) {
	switch kind {
	case content_models.KindCompilation:
		c, err := r.store.Compilations.GetByID(ctx, id)
		if err != nil || c == nil {
			return nil, err
		}
		return c, nil
	case content_models.KindProfile:
		p, err := r.store.Profiles.GetByID(ctx, id)
		if err != nil || p == nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, string(kind))
}

// resolveContainer 成员展开失败（不存在）时静默过滤，存储错误向上返回
func (r *Resolver) resolveContainer(
	ctx context.Context,
	kind content_models.Kind,
	id primitive.ObjectID,
	depth int,
) (*content_models.ResolvedContainer, error) {
	container, err := r.loadContainer(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("加载%s失败(%s): %w", kind, id.Hex(), err)
	}
	if container == nil {
		return nil, nil
	}

	resolved := &content_models.ResolvedContainer{
		Container: container,
		Members:   []*content_models.ResolvedEntity{},
	}
	for _, ref := range container.MemberReferences() {
		if depth <= 0 {
			resolved.Pending = append(resolved.Pending, ref)
			continue
		}
		if !ref.Valid() {
			continue
		}
		member, err := r.resolveEntity(ctx, ref.ID, depth-1)
		if err != nil {
			return nil, err
		}
		if member == nil {
			continue
		}
		resolved.Members = append(resolved.Members, member)
	}
	return resolved, nil
}
