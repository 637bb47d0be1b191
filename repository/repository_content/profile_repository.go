package repository_content

import (
	"context"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/mongo"
	"github.com/mediavault/content-repository/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type profileRepository struct {
	*repository.BaseMongoRepository[content_models.Profile]
}

func NewProfileRepository(db mongo.Database) content_interface.ProfileRepository {
	return &profileRepository{
		BaseMongoRepository: repository.NewBaseMongoRepository[content_models.Profile](db, domain.CollectionProfile),
	}
}

func (r *profileRepository) FindIDsByEntity(ctx context.Context, entityID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.FindIDs(ctx, memberFilter(entityID))
}

func (r *profileRepository) List(ctx context.Context, q content_models.PropertyQuery) ([]*content_models.Profile, error) {
	return r.GetByFilter(ctx, propertyFilter(q), propertyFindOptions(q))
}
