package content_interface

import (
	"context"

	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetByID 未命中时返回 (nil, nil)；Delete 未命中时返回 domain.ErrNotFound

type DigitalEntityRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*content_models.DigitalEntity, error)
	Upsert(ctx context.Context, doc *content_models.DigitalEntity) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type EntityRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*content_models.Entity, error)
	Upsert(ctx context.Context, doc *content_models.Entity) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// FindIDsByDigitalEntity 反向查找引用了该 DigitalEntity 的 Entity
	FindIDsByDigitalEntity(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error)
	// ForEachPublished 遍历 finished && online 的 Entity，fn 返回错误时终止
	ForEachPublished(ctx context.Context, fn func(*content_models.Entity) error) error
	// List 按派生字段过滤排序，q 已经过 Normalize
	List(ctx context.Context, q content_models.PropertyQuery) ([]*content_models.Entity, error)
}

type CompilationRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*content_models.Compilation, error)
	Upsert(ctx context.Context, doc *content_models.Compilation) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	FindIDsByEntity(ctx context.Context, entityID primitive.ObjectID) ([]primitive.ObjectID, error)
	ForEach(ctx context.Context, fn func(*content_models.Compilation) error) error
	List(ctx context.Context, q content_models.PropertyQuery) ([]*content_models.Compilation, error)
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*content_models.Profile, error)
	Upsert(ctx context.Context, doc *content_models.Profile) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	FindIDsByEntity(ctx context.Context, entityID primitive.ObjectID) ([]primitive.ObjectID, error)
	List(ctx context.Context, q content_models.PropertyQuery) ([]*content_models.Profile, error)
}

// DerivedPropertyRepository 只操作派生字段的部分更新，不会覆盖用户字段
type DerivedPropertyRepository interface {
	// ForEachMissing 遍历 fields 中任一字段缺失的文档 ID
	ForEachMissing(ctx context.Context, kind content_models.Kind, fields []string, fn func(primitive.ObjectID) error) error
	// SetDerived 写入 changes 中非 nil 的字段
	SetDerived(ctx context.Context, kind content_models.Kind, id primitive.ObjectID, changes content_models.DerivedFields) error
	// UnsetDerived 将字段标记为缺失，等待重新计算
	UnsetDerived(ctx context.Context, kind content_models.Kind, ids []primitive.ObjectID, fields []string) error
	IncrementHits(ctx context.Context, kind content_models.Kind, id primitive.ObjectID) error
	// DecrementHits 所有 hits > 0 的文档减一，返回受影响的数量
	DecrementHits(ctx context.Context, kind content_models.Kind) (int64, error)
}

// SearchIndex 外部搜索服务
type SearchIndex interface {
	UpdateDocument(ctx context.Context, kind content_models.Kind, doc *content_models.SearchDocument) error
}

// Store 引擎依赖的全部仓储
type Store struct {
	DigitalEntities DigitalEntityRepository
	Entities        EntityRepository
	Compilations    CompilationRepository
	Profiles        ProfileRepository
	Derived         DerivedPropertyRepository
}
