package repository_content

import (
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// propertyFilter 集合字段用 $in 匹配任一取值
func propertyFilter(q content_models.PropertyQuery) bson.M {
	filter := bson.M{}
	if len(q.Licenses) > 0 {
		filter[content_models.FieldLicenses] = bson.M{"$in": q.Licenses}
	}
	if len(q.MediaTypes) > 0 {
		filter[content_models.FieldMediaTypes] = bson.M{"$in": q.MediaTypes}
	}
	if q.Downloadable != nil {
		filter[content_models.FieldDownloadable] = *q.Downloadable
	}
	return filter
}

func propertyFindOptions(q content_models.PropertyQuery) *options.FindOptions {
	sort := make(bson.D, 0, len(q.Sort)+1)
	for _, s := range q.Sort {
		direction := 1
		if s.Descending() {
			direction = -1
		}
		sort = append(sort, bson.E{Key: s.Sort, Value: direction})
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})

	return options.Find().
		SetSort(sort).
		SetSkip(q.Skip).
		SetLimit(q.Limit)
}
