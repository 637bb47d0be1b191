package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BaseMongoRepository MongoDB通用Repository实现
type BaseMongoRepository[T any] struct {
	db         mongo.Database
	collection string
}

// NewBaseMongoRepository 创建新的MongoDB Repository实例
func NewBaseMongoRepository[T any](db mongo.Database, collection string) *BaseMongoRepository[T] {
	return &BaseMongoRepository[T]{
		db:         db,
		collection: collection,
	}
}

var _ domain.BaseRepository[struct{}] = (*BaseMongoRepository[struct{}])(nil)

func (r *BaseMongoRepository[T]) Collection() mongo.Collection {
	return r.db.Collection(r.collection)
}

// Upsert 插入或更新实体。ID 为空时生成新 ID 并回写到实体上；
// 使用 $set 写入，未出现在结构体中的字段（派生字段为 nil 时）保持原值
func (r *BaseMongoRepository[T]) Upsert(ctx context.Context, entity *T) error {
	if entity == nil {
		return errors.New("entity cannot be nil")
	}

	id := r.getEntityID(entity)
	if id.IsZero() {
		id = primitive.NewObjectID()
		r.setEntityID(entity, id)
	}

	// 设置更新时间戳
	r.setTimestamps(entity)

	filter := bson.M{"_id": id}
	update := bson.M{"$set": entity}
	opts := options.Update().SetUpsert(true)
	if _, err := r.Collection().UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to update or insert entity: %w", err)
	}

	return nil
}

// GetByID 根据ID获取实体，没找到返回 (nil, nil)
func (r *BaseMongoRepository[T]) GetByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	if id.IsZero() {
		return nil, errors.New("id cannot be empty")
	}
	return r.GetOneByFilter(ctx, bson.M{"_id": id})
}

// Delete 删除实体
func (r *BaseMongoRepository[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	if id.IsZero() {
		return errors.New("id cannot be empty")
	}

	deletedCount, err := r.Collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	if deletedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id.Hex())
	}

	return nil
}

// GetOneByFilter 根据过滤条件获取单个实体
func (r *BaseMongoRepository[T]) GetOneByFilter(ctx context.Context, filter interface{}) (*T, error) {
	var entity T
	err := r.Collection().FindOne(ctx, filter).Decode(&entity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // 没找到返回nil，不是错误
		}
		return nil, fmt.Errorf("failed to find entity: %w", err)
	}

	return &entity, nil
}

// GetByFilter 分页查询，排序与分页由 opts 指定
func (r *BaseMongoRepository[T]) GetByFilter(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.ForEachByFilter(ctx, filter, func(entity *T) error {
		entities = append(entities, entity)
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	return entities, nil
}

// ForEachByFilter 流式遍历，避免一次性加载整个集合；fn 返回错误时终止遍历
func (r *BaseMongoRepository[T]) ForEachByFilter(
	ctx context.Context,
	filter interface{},
	fn func(*T) error,
	opts ...*options.FindOptions,
) error {
	cursor, err := r.Collection().Find(ctx, filter, opts...)
	if err != nil {
		return fmt.Errorf("failed to find entities: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var entity T
		if err := cursor.Decode(&entity); err != nil {
			return fmt.Errorf("failed to decode entity: %w", err)
		}
		if err := fn(&entity); err != nil {
			return err
		}
	}

	return cursor.Err()
}

// FindIDs 仅投影 _id
func (r *BaseMongoRepository[T]) FindIDs(ctx context.Context, filter interface{}) ([]primitive.ObjectID, error) {
	cursor, err := r.Collection().Find(ctx, filter, options.Find().SetProjection(mongo.ProjectionID))
	if err != nil {
		return nil, fmt.Errorf("failed to find ids: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode id: %w", err)
		}
		ids = append(ids, doc.ID)
	}

	return ids, cursor.Err()
}

// 辅助方法：设置更新时间
func (r *BaseMongoRepository[T]) setTimestamps(entity *T) {
	val := reflect.ValueOf(entity).Elem()
	typ := val.Type()

	now := time.Now().UTC()
	timeType := reflect.TypeOf(now)

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}

		fieldName, _, _ := strings.Cut(typ.Field(i).Tag.Get("bson"), ",")
		if fieldName == "updated_at" && field.Type() == timeType {
			field.Set(reflect.ValueOf(now))
		}
	}
}

// 获取实体ID
func (r *BaseMongoRepository[T]) getEntityID(entity *T) primitive.ObjectID {
	val := reflect.ValueOf(entity).Elem()
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanInterface() {
			continue
		}

		// 解析bson标签（兼容带选项的标签）
		fieldName, _, _ := strings.Cut(typ.Field(i).Tag.Get("bson"), ",")
		if fieldName == "" {
			fieldName = typ.Field(i).Name
		}

		if matchesIDField(fieldName) && field.Type() == objectIDType {
			return field.Interface().(primitive.ObjectID)
		}
	}
	return primitive.NilObjectID
}

// 设置实体ID
func (r *BaseMongoRepository[T]) setEntityID(entity *T, id primitive.ObjectID) {
	val := reflect.ValueOf(entity).Elem()
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}

		fieldName, _, _ := strings.Cut(typ.Field(i).Tag.Get("bson"), ",")
		if fieldName == "" {
			fieldName = typ.Field(i).Name
		}

		if matchesIDField(fieldName) && field.Type() == objectIDType {
			field.Set(reflect.ValueOf(id))
			return
		}
	}
}

var objectIDType = reflect.TypeOf(primitive.ObjectID{})

// 辅助函数：检查字段名是否匹配ID
func matchesIDField(name string) bool {
	return name == "_id" || name == "ID"
}
