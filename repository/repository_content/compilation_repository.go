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

type compilationRepository struct {
	*repository.BaseMongoRepository[content_models.Compilation]
	batchSize int32
}

func NewCompilationRepository(db mongo.Database, batchSize int32) content_interface.CompilationRepository {
	return &compilationRepository{
		BaseMongoRepository: repository.NewBaseMongoRepository[content_models.Compilation](db, domain.CollectionCompilation),
		batchSize:           normalizeBatchSize(batchSize),
	}
}

func (r *compilationRepository) FindIDsByEntity(ctx context.Context, entityID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.FindIDs(ctx, memberFilter(entityID))
}

func (r *compilationRepository) ForEach(ctx context.Context, fn func(*content_models.Compilation) error) error {
	return r.ForEachByFilter(ctx, bson.M{}, fn, options.Find().SetBatchSize(r.batchSize))
}

// memberFilter 成员表以十六进制 ID 为键
func memberFilter(entityID primitive.ObjectID) bson.M {
	return bson.M{"entities." + entityID.Hex(): bson.M{"$exists": true}}
}

func (r *compilationRepository) List(ctx context.Context, q content_models.PropertyQuery) ([]*content_models.Compilation, error) {
	return r.GetByFilter(ctx, propertyFilter(q), propertyFindOptions(q))
}
