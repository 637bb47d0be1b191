package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/usecase/usecase_hook"
	"github.com/mediavault/content-repository/usecase/usecase_propagation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentUsecase 内容文档的写路径与读路径
type ContentUsecase[T any] interface {
	// Save 持久化后触发 afterSave 钩子，返回存储中的最新文档
	Save(ctx context.Context, doc *T, actor *domain.Actor) (*T, error)
	// Get 返回展开引用后的文档
	Get(ctx context.Context, id string) (content_models.Resolved, error)
	Delete(ctx context.Context, id string, actor *domain.Actor) error
	// Hit 访问计数加一
	Hit(ctx context.Context, id string) error
	// List 按派生字段过滤排序；DigitalEntity 没有派生字段
	List(ctx context.Context, q content_models.PropertyQuery) ([]*T, error)
}

// DocumentRepository 四种内容仓储的公共部分
type DocumentRepository[T any] interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	Upsert(ctx context.Context, doc *T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// listingRepository 带派生字段的三种仓储额外提供列表查询
type listingRepository[T any] interface {
	List(ctx context.Context, q content_models.PropertyQuery) ([]*T, error)
}

// DocumentPointer 约束 *T 必须是内容文档
type DocumentPointer[T any] interface {
	*T
	content_models.Document
}

// BaseContentUsecase 通用内容Usecase实现
type BaseContentUsecase[T any, P DocumentPointer[T]] struct {
	kind     content_models.Kind
	repo     DocumentRepository[T]
	hooks    *usecase_hook.Manager
	resolver *usecase_propagation.Resolver
	derived  content_interface.DerivedPropertyRepository
	timeout  time.Duration
}

// NewBaseContentUsecase 创建通用内容Usecase实例
func NewBaseContentUsecase[T any, P DocumentPointer[T]](
	kind content_models.Kind,
	repo DocumentRepository[T],
	hooks *usecase_hook.Manager,
	resolver *usecase_propagation.Resolver,
	derived content_interface.DerivedPropertyRepository,
	timeout time.Duration,
) *BaseContentUsecase[T, P] {
	return &BaseContentUsecase[T, P]{
		kind:     kind,
		repo:     repo,
		hooks:    hooks,
		resolver: resolver,
		derived:  derived,
		timeout:  timeout,
	}
}

func (uc *BaseContentUsecase[T, P]) Save(ctx context.Context, doc *T, actor *domain.Actor) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	if doc == nil {
		return nil, errors.New("document cannot be nil")
	}

	// 派生字段只能由引擎写入
	content_models.ResetDerived(P(doc))

	if err := uc.repo.Upsert(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", uc.kind, err)
	}

	saved := uc.hooks.Fire(ctx, uc.kind, usecase_hook.EventAfterSave, P(doc), actor)

	fresh, err := uc.repo.GetByID(ctx, saved.DocumentID())
	if err == nil && fresh != nil {
		return fresh, nil
	}
	if typed, ok := saved.(P); ok {
		return (*T)(typed), nil
	}
	return doc, nil
}

func (uc *BaseContentUsecase[T, P]) Get(ctx context.Context, id string) (content_models.Resolved, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	resolved, err := uc.resolver.ResolveHex(ctx, uc.kind, id)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, uc.kind, id)
	}
	return resolved, nil
}

func (uc *BaseContentUsecase[T, P]) Delete(ctx context.Context, id string, actor *domain.Actor) error {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	objID, err := parseID(id)
	if err != nil {
		return err
	}

	existing, err := uc.repo.GetByID(ctx, objID)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", uc.kind, err)
	}
	if existing == nil {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, uc.kind, id)
	}

	if err := uc.repo.Delete(ctx, objID); err != nil {
		return fmt.Errorf("failed to delete %s: %w", uc.kind, err)
	}

	uc.hooks.Fire(ctx, uc.kind, usecase_hook.EventAfterDelete, P(existing), actor)
	return nil
}

func (uc *BaseContentUsecase[T, P]) Hit(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	if !uc.kind.HasDerived() {
		return fmt.Errorf("%w: %s", domain.ErrNotDerivable, uc.kind)
	}
	objID, err := parseID(id)
	if err != nil {
		return err
	}
	return uc.derived.IncrementHits(ctx, uc.kind, objID)
}

func (uc *BaseContentUsecase[T, P]) List(ctx context.Context, q content_models.PropertyQuery) ([]*T, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	lister, ok := uc.repo.(listingRepository[T])
	if !ok || !uc.kind.HasDerived() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotDerivable, uc.kind)
	}
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	items, err := lister.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", uc.kind, err)
	}
	return items, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id format %q", domain.ErrMalformedReference, id)
	}
	return objID, nil
}
