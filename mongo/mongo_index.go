package mongo

import (
	"context"
	"time"

	"github.com/mediavault/content-repository/domain"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndexes 启动时创建派生字段与引用查询所需的索引，已存在的同名索引跳过
func CreateIndexes(db Database, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Entity Collection
	entityCollection := db.Collection(domain.CollectionEntity)
	createIndex(ctx, log, entityCollection, bson.D{{Key: "relatedDigitalEntity", Value: 1}}, "related_digital_entity")
	createIndex(ctx, log, entityCollection, bson.D{
		{Key: "finished", Value: 1},
		{Key: "online", Value: 1}}, "published_compound")
	createDerivedIndexes(ctx, log, entityCollection)

	// Compilation Collection
	compilationCollection := db.Collection(domain.CollectionCompilation)
	createDerivedIndexes(ctx, log, compilationCollection)

	// Profile Collection
	profileCollection := db.Collection(domain.CollectionProfile)
	createDerivedIndexes(ctx, log, profileCollection)
}

// 派生字段索引：过滤与排序查询都落在这些字段上
func createDerivedIndexes(ctx context.Context, log zerolog.Logger, collection Collection) {
	createIndex(ctx, log, collection, bson.D{{Key: "__licenses", Value: 1}}, "derived_licenses")
	createIndex(ctx, log, collection, bson.D{{Key: "__mediaTypes", Value: 1}}, "derived_media_types")
	createIndex(ctx, log, collection, bson.D{{Key: "__downloadable", Value: 1}}, "derived_downloadable")
	createIndex(ctx, log, collection, bson.D{{Key: "__createdAt", Value: -1}}, "derived_created_at")
	createIndex(ctx, log, collection, bson.D{{Key: "__hits", Value: -1}}, "derived_hits")
	createIndex(ctx, log, collection, bson.D{{Key: "__annotationCount", Value: -1}}, "derived_annotation_count")
	createIndex(ctx, log, collection, bson.D{{Key: "__normalizedName", Value: 1}}, "derived_normalized_name")
	createIndex(ctx, log, collection, bson.D{{Key: "__namePinyin", Value: 1}}, "derived_name_pinyin")
	// 复合索引优化
	createIndex(ctx, log, collection, bson.D{
		{Key: "__mediaTypes", Value: 1},
		{Key: "__hits", Value: -1}}, "derived_media_types_hits_compound")
}

func createIndex(
	ctx context.Context,
	log zerolog.Logger,
	collection Collection,
	keys bson.D,
	name string,
) {
	specs, err := collection.Indexes().ListSpecifications(ctx)
	if err == nil {
		for _, spec := range specs {
			if spec.Name == name {
				log.Debug().Str("index", name).Msg("索引已存在，跳过创建")
				return
			}
		}
	}

	indexModel := mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Warn().Err(err).Str("index", name).Msg("创建索引失败")
		return
	}
	log.Info().Str("index", name).Msg("索引创建成功")
}
