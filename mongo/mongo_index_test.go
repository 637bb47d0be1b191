package mongo_test

import (
	"io"
	"testing"

	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/mongo"
	"github.com/mediavault/content-repository/mongo/mongotest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCreateIndexes(t *testing.T) {
	db := mongotest.NewDatabase()
	log := zerolog.New(io.Discard)

	mongo.CreateIndexes(db, log)

	entity := db.C(domain.CollectionEntity).IndexNames()
	assert.Contains(t, entity, "related_digital_entity")
	assert.Contains(t, entity, "published_compound")
	assert.Contains(t, entity, "derived_licenses")
	assert.Contains(t, db.C(domain.CollectionCompilation).IndexNames(), "derived_media_types_hits_compound")
	assert.Contains(t, db.C(domain.CollectionProfile).IndexNames(), "derived_name_pinyin")
	assert.Empty(t, db.C(domain.CollectionDigitalEntity).IndexNames())

	// 重复执行不会重复创建
	before := len(entity)
	mongo.CreateIndexes(db, log)
	assert.Len(t, db.C(domain.CollectionEntity).IndexNames(), before)
}
