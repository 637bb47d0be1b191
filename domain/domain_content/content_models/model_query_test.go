package content_models

import (
	"testing"

	"github.com/mediavault/content-repository/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyQueryNormalize(t *testing.T) {
	sorts := []domain.SortOrder{{Sort: FieldHits, Order: "DESC"}, {Sort: FieldCreatedAt}}
	q, err := PropertyQuery{Sort: sorts, Limit: 10_000}.Normalize()
	require.NoError(t, err)

	assert.Equal(t, "desc", q.Sort[0].Order)
	assert.Equal(t, "asc", q.Sort[1].Order)
	assert.Equal(t, MaxListLimit, q.Limit)
	assert.Equal(t, "DESC", sorts[0].Order, "caller slice is not modified")

	q, err = PropertyQuery{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, DefaultListLimit, q.Limit)
}

func TestPropertyQueryNormalizeRejects(t *testing.T) {
	for name, q := range map[string]PropertyQuery{
		"user field":    {Sort: []domain.SortOrder{{Sort: "name"}}},
		"filter field":  {Sort: []domain.SortOrder{{Sort: FieldLicenses}}},
		"bad order":     {Sort: []domain.SortOrder{{Sort: FieldHits, Order: "up"}}},
		"negative skip": {Skip: -1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := q.Normalize()
			assert.ErrorIs(t, err, domain.ErrInvalidQuery)
		})
	}
}

func TestPropertyQueryMatches(t *testing.T) {
	yes := true
	d := DerivedFields{
		Licenses:     &[]string{"CC-BY", "CC0"},
		MediaTypes:   &[]string{},
		Downloadable: &yes,
	}

	assert.True(t, PropertyQuery{}.Matches(d))
	assert.True(t, PropertyQuery{Licenses: []string{"CC0", "PD"}}.Matches(d))
	assert.False(t, PropertyQuery{Licenses: []string{"PD"}}.Matches(d))
	assert.False(t, PropertyQuery{MediaTypes: []string{"image"}}.Matches(d))
	assert.True(t, PropertyQuery{Downloadable: &yes}.Matches(d))

	// 字段缺失的文档不命中
	assert.False(t, PropertyQuery{Licenses: []string{"CC0"}}.Matches(DerivedFields{}))
}
