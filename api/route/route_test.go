package route_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mediavault/content-repository/api/route"
	"github.com/mediavault/content-repository/bootstrap"
	"github.com/mediavault/content-repository/domain"
	"github.com/mediavault/content-repository/repository/repository_memory"
	"github.com/mediavault/content-repository/repository/repository_search"
	"github.com/mediavault/content-repository/util/tokenutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const secret = "route-test-secret"

type server struct {
	engine *gin.Engine
	app    *bootstrap.Application
	store  *repository_memory.Store
	token  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository_memory.NewStore()
	env := &bootstrap.Env{AccessTokenSecret: secret, ResolveDepth: 2, ContextTimeout: 5}
	app := bootstrap.Wire(env, store.Content(), repository_memory.NewJobStatusRepository(),
		repository_search.NewNoopSearchIndex(), zerolog.New(io.Discard), prometheus.NewRegistry())

	engine := gin.New()
	route.Setup(app, engine)

	token, err := tokenutil.CreateAccessToken(&domain.Actor{UserID: "u-7", Username: "archivist"}, secret, time.Hour)
	require.NoError(t, err)

	return &server{engine: engine, app: app, store: store, token: token}
}

func (s *server) do(method, path, body string, auth bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func savedID(t *testing.T, w *httptest.ResponseRecorder, key string) string {
	t.Helper()
	var doc struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w)[key], &doc))
	require.NotEmpty(t, doc.ID)
	return doc.ID
}

func TestWriteRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/digitalentities", `{"title":"Vase"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodDelete, "/api/entities/"+primitive.NewObjectID().Hex(), "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/search/sync", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSaveAndGetEntity(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/digitalentities", `{"title":"Vase","licence":"CC0"}`, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	deID := savedID(t, w, "digitalEntity")

	w = s.do(http.MethodPost, "/api/entities",
		`{"name":"Vase scan","files":[{"file_name":"vase.glb"}],"mediaType":"model","finished":true,"online":true,"relatedDigitalEntity":"`+deID+`"}`, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	entityID := savedID(t, w, "entity")

	var saved struct {
		Licenses   []string `json:"__licenses"`
		MediaTypes []string `json:"__mediaTypes"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w)["entity"], &saved))
	assert.Equal(t, []string{"CC0"}, saved.Licenses)
	assert.Equal(t, []string{"model"}, saved.MediaTypes)

	w = s.do(http.MethodGet, "/api/entities/"+entityID, "", false)
	require.Equal(t, http.StatusOK, w.Code)
	var resolved struct {
		DigitalEntity struct {
			Licence string `json:"licence"`
		} `json:"digitalEntity"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w)["entity"], &resolved))
	assert.Equal(t, "CC0", resolved.DigitalEntity.Licence)
}

func TestReadErrors(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/api/entities/not-an-id", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/compilations/"+primitive.NewObjectID().Hex(), "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/profiles/"+primitive.NewObjectID().Hex(), "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHitRoutes(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/entities", `{"name":"Amphora"}`, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id := savedID(t, w, "entity")

	w = s.do(http.MethodPost, "/api/entities/"+id+"/hit", "", false)
	assert.Equal(t, http.StatusNoContent, w.Code)

	oid, err := primitive.ObjectIDFromHex(id)
	require.NoError(t, err)
	stored := s.store.Entity(oid)
	require.NotNil(t, stored.Hits)
	assert.Equal(t, int64(1), *stored.Hits)

	w = s.do(http.MethodPost, "/api/digitalentities/"+id+"/hit", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteEntityRefreshesCompilation(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/entities", `{"name":"Bowl","mediaType":"image"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	id := savedID(t, w, "entity")

	w = s.do(http.MethodPost, "/api/compilations", `{"name":"Ceramics","entities":{"`+id+`":"`+id+`"}}`, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	compilationID, err := primitive.ObjectIDFromHex(savedID(t, w, "compilation"))
	require.NoError(t, err)
	require.Equal(t, []string{"image"}, *s.store.Compilation(compilationID).MediaTypes)

	w = s.do(http.MethodDelete, "/api/entities/"+id, "", true)
	require.Equal(t, http.StatusOK, w.Code)

	s.app.Queue.RunPending(context.Background())
	stored := s.store.Compilation(compilationID)
	require.NotNil(t, stored.MediaTypes)
	assert.Empty(t, *stored.MediaTypes)
}

func TestSearchSyncAccepted(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/search/sync", "", true)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/metrics", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "content_task_queue_depth")
}

func TestListRoute(t *testing.T) {
	s := newServer(t)

	for _, body := range []string{
		`{"name":"Bowl","mediaType":"image"}`,
		`{"name":"Amphora","mediaType":"model"}`,
		`{"name":"Ladle","mediaType":"image"}`,
	} {
		w := s.do(http.MethodPost, "/api/entities", body, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, "/api/entities?mediaType=image&sort=__normalizedName:desc", "", false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var items []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w)["entities"], &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Ladle", items[0].Name)
	assert.Equal(t, "Bowl", items[1].Name)

	w = s.do(http.MethodGet, "/api/entities?start=1&end=2&sort=__normalizedName", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w)["entities"], &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Bowl", items[0].Name)

	w = s.do(http.MethodGet, "/api/entities?sort=name:asc", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/entities?downloadable=maybe", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/digitalentities", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobStatusRoutes(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/api/system/jobs", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/system/jobs/ensure_filterable", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, s.app.Jobs.EnsureFilterableProperties(context.Background()))

	w = s.do(http.MethodGet, "/api/system/jobs", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var jobs []struct {
		Job   string `json:"job"`
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w)["jobs"], &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "ensure_filterable", jobs[0].Job)
	assert.Equal(t, "succeeded", jobs[0].State)
}
