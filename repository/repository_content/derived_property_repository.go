package repository_content

import (
	"context"
	"fmt"

	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultBatchSize int32 = 500

func normalizeBatchSize(n int32) int32 {
	if n <= 0 {
		return defaultBatchSize
	}
	return n
}

type derivedPropertyRepository struct {
	db        mongo.Database
	batchSize int32
}

func NewDerivedPropertyRepository(db mongo.Database, batchSize int32) content_interface.DerivedPropertyRepository {
	return &derivedPropertyRepository{db: db, batchSize: normalizeBatchSize(batchSize)}
}

func (r *derivedPropertyRepository) collection(kind content_models.Kind) (mongo.Collection, error) {
	name, err := kind.Collection()
	if err != nil {
		return nil, err
	}
	return r.db.Collection(name), nil
}

// ForEachMissing 只投影 _id，按批次流式读取
func (r *derivedPropertyRepository) ForEachMissing(
	ctx context.Context,
	kind content_models.Kind,
	fields []string,
	fn func(primitive.ObjectID) error,
) error {
	coll, err := r.collection(kind)
	if err != nil {
		return err
	}

	opts := options.Find().
		SetProjection(mongo.ProjectionID).
		SetBatchSize(r.batchSize)
	cursor, err := coll.Find(ctx, missingFilter(fields), opts)
	if err != nil {
		return fmt.Errorf("查询缺失派生字段失败(%s): %w", kind, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("解码文档ID失败(%s): %w", kind, err)
		}
		if err := fn(doc.ID); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func missingFilter(fields []string) bson.M {
	clauses := make([]bson.M, 0, len(fields))
	for _, f := range fields {
		clauses = append(clauses, bson.M{f: bson.M{"$exists": false}})
	}
	return bson.M{"$or": clauses}
}

func (r *derivedPropertyRepository) SetDerived(
	ctx context.Context,
	kind content_models.Kind,
	id primitive.ObjectID,
	changes content_models.DerivedFields,
) error {
	set := derivedSetDocument(changes)
	if len(set) == 0 {
		return nil
	}
	coll, err := r.collection(kind)
	if err != nil {
		return err
	}

	if _, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("写入派生字段失败(%s %s): %w", kind, id.Hex(), err)
	}
	return nil
}

// derivedSetDocument 只包含非 nil 字段，空集合写为 [] 而不是缺失
func derivedSetDocument(d content_models.DerivedFields) bson.M {
	set := bson.M{}
	if d.Licenses != nil {
		set[content_models.FieldLicenses] = nonNil(*d.Licenses)
	}
	if d.MediaTypes != nil {
		set[content_models.FieldMediaTypes] = nonNil(*d.MediaTypes)
	}
	if d.Downloadable != nil {
		set[content_models.FieldDownloadable] = *d.Downloadable
	}
	if d.CreatedAt != nil {
		set[content_models.FieldCreatedAt] = *d.CreatedAt
	}
	if d.Hits != nil {
		set[content_models.FieldHits] = *d.Hits
	}
	if d.AnnotationCount != nil {
		set[content_models.FieldAnnotationCount] = *d.AnnotationCount
	}
	if d.NormalizedName != nil {
		set[content_models.FieldNormalizedName] = *d.NormalizedName
	}
	if d.NamePinyin != nil {
		set[content_models.FieldNamePinyin] = nonNil(*d.NamePinyin)
	}
	return set
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *derivedPropertyRepository) UnsetDerived(
	ctx context.Context,
	kind content_models.Kind,
	ids []primitive.ObjectID,
	fields []string,
) error {
	if len(ids) == 0 || len(fields) == 0 {
		return nil
	}
	coll, err := r.collection(kind)
	if err != nil {
		return err
	}

	unset := bson.M{}
	for _, f := range fields {
		unset[f] = ""
	}
	if _, err := coll.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$unset": unset}); err != nil {
		return fmt.Errorf("清除派生字段失败(%s): %w", kind, err)
	}
	return nil
}

func (r *derivedPropertyRepository) IncrementHits(ctx context.Context, kind content_models.Kind, id primitive.ObjectID) error {
	coll, err := r.collection(kind)
	if err != nil {
		return err
	}
	update := bson.M{"$inc": bson.M{content_models.FieldHits: 1}}
	if _, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("增加访问计数失败(%s %s): %w", kind, id.Hex(), err)
	}
	return nil
}

// DecrementHits 过滤条件保证计数不会减到负数
func (r *derivedPropertyRepository) DecrementHits(ctx context.Context, kind content_models.Kind) (int64, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return 0, err
	}
	filter := bson.M{content_models.FieldHits: bson.M{"$gt": 0}}
	update := bson.M{"$inc": bson.M{content_models.FieldHits: -1}}
	result, err := coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("衰减访问计数失败(%s): %w", kind, err)
	}
	return result.ModifiedCount, nil
}
