package tokenutil

import (
	"testing"
	"time"

	"github.com/mediavault/content-repository/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndExtract(t *testing.T) {
	token, err := CreateAccessToken(&domain.Actor{UserID: "u-42", Username: "curator"}, "s3cret", time.Hour)
	require.NoError(t, err)

	actor, err := ExtractActor(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "u-42", actor.UserID)
	assert.Equal(t, "curator", actor.Username)
}

func TestExtractRejectsWrongSecret(t *testing.T) {
	token, err := CreateAccessToken(&domain.Actor{UserID: "u-42"}, "s3cret", time.Hour)
	require.NoError(t, err)

	_, err = ExtractActor(token, "other")
	assert.Error(t, err)
}

func TestExtractRejectsExpired(t *testing.T) {
	token, err := CreateAccessToken(&domain.Actor{UserID: "u-42"}, "s3cret", -time.Minute)
	require.NoError(t, err)

	_, err = ExtractActor(token, "s3cret")
	assert.Error(t, err)
}

func TestCreateRequiresActor(t *testing.T) {
	_, err := CreateAccessToken(nil, "s3cret", time.Hour)
	assert.Error(t, err)
}
