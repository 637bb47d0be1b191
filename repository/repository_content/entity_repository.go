package repository_content

import (
	"context"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/mongo"
	"github.com/mediavault/content-repository/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type entityRepository struct {
	*repository.BaseMongoRepository[content_models.Entity]
	batchSize int32
}

func NewEntityRepository(db mongo.Database, batchSize int32) content_interface.EntityRepository {
	return &entityRepository{
		BaseMongoRepository: repository.NewBaseMongoRepository[content_models.Entity](db, domain.CollectionEntity),
		batchSize:           normalizeBatchSize(batchSize),
	}
}

// FindIDsByDigitalEntity 引用可能以 ObjectID、十六进制字符串或 {_id} 存根的形式存储
func (r *entityRepository) FindIDsByDigitalEntity(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{"$or": []bson.M{
		{"relatedDigitalEntity": id},
		{"relatedDigitalEntity": id.Hex()},
		{"relatedDigitalEntity._id": id},
	}}
	return r.FindIDs(ctx, filter)
}

func (r *entityRepository) ForEachPublished(ctx context.Context, fn func(*content_models.Entity) error) error {
	filter := bson.M{"finished": true, "online": true}
	return r.ForEachByFilter(ctx, filter, fn, options.Find().SetBatchSize(r.batchSize))
}

func (r *entityRepository) List(ctx context.Context, q content_models.PropertyQuery) ([]*content_models.Entity, error) {
	return r.GetByFilter(ctx, propertyFilter(q), propertyFindOptions(q))
}
