package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BaseRepository 通用Repository接口，内容文档的四个集合共用
// T: 实体类型，必须包含 `bson:"_id"` 的 primitive.ObjectID 字段
type BaseRepository[T any] interface {
	// 基础操作
	Upsert(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// 查询操作
	GetOneByFilter(ctx context.Context, filter interface{}) (*T, error)
	GetByFilter(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]*T, error)
	ForEachByFilter(ctx context.Context, filter interface{}, fn func(*T) error, opts ...*options.FindOptions) error
	FindIDs(ctx context.Context, filter interface{}) ([]primitive.ObjectID, error)
}

// Keyed 以字符串为主键的文档
type Keyed[T any] interface {
	*T
	Key() string
}

// ConfigRepository 以字符串为主键的小集合，整条记录覆盖写入
type ConfigRepository[T any] interface {
	// Get 没找到返回 (nil, nil)
	Get(ctx context.Context, key string) (*T, error)
	Upsert(ctx context.Context, doc *T) error
	GetAll(ctx context.Context) ([]*T, error)
}
