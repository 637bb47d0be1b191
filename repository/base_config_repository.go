package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConfigMongoRepository 以字符串为主键的MongoDB Repository实现
type ConfigMongoRepository[T any, P domain.Keyed[T]] struct {
	*BaseMongoRepository[T]
}

// NewConfigMongoRepository 创建新的配置Repository实例
func NewConfigMongoRepository[T any, P domain.Keyed[T]](db mongo.Database, collection string) *ConfigMongoRepository[T, P] {
	return &ConfigMongoRepository[T, P]{
		BaseMongoRepository: NewBaseMongoRepository[T](db, collection),
	}
}

// Get 根据主键获取，没找到返回 (nil, nil)
func (r *ConfigMongoRepository[T, P]) Get(ctx context.Context, key string) (*T, error) {
	if key == "" {
		return nil, errors.New("key cannot be empty")
	}
	return r.GetOneByFilter(ctx, bson.M{"_id": key})
}

// Upsert 整条记录覆盖写入
func (r *ConfigMongoRepository[T, P]) Upsert(ctx context.Context, doc *T) error {
	if doc == nil {
		return errors.New("config cannot be nil")
	}

	key := P(doc).Key()
	if key == "" {
		return errors.New("config key cannot be empty")
	}

	// 设置更新时间
	r.setTimestamps(doc)

	filter := bson.M{"_id": key}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	if _, err := r.Collection().UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}

	return nil
}

// GetAll 获取所有记录，按主键排序
func (r *ConfigMongoRepository[T, P]) GetAll(ctx context.Context) ([]*T, error) {
	return r.GetByFilter(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}
