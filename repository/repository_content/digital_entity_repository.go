package repository_content

import (
	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"github.com/mediavault/content-repository/mongo"
	"github.com/mediavault/content-repository/repository"
)

type digitalEntityRepository struct {
	*repository.BaseMongoRepository[content_models.DigitalEntity]
}

func NewDigitalEntityRepository(db mongo.Database) content_interface.DigitalEntityRepository {
	return &digitalEntityRepository{
		BaseMongoRepository: repository.NewBaseMongoRepository[content_models.DigitalEntity](db, domain.CollectionDigitalEntity),
	}
}
