package controller_content

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingSyncer struct {
	calls    atomic.Int32
	finished atomic.Int32
	release  chan struct{}
}

func (s *blockingSyncer) EnsureSearchIndex(context.Context) error {
	s.calls.Add(1)
	<-s.release
	s.finished.Add(1)
	return nil
}

func TestSearchSyncJoinsRunningPass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	syncer := &blockingSyncer{release: make(chan struct{})}
	ctrl := NewSearchSyncController(syncer, zerolog.New(io.Discard))
	engine := gin.New()
	engine.POST("/search/sync", ctrl.Sync)

	post := func() int {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search/sync", nil))
		return w.Code
	}

	require.Equal(t, http.StatusAccepted, post())
	require.Equal(t, http.StatusAccepted, post())
	require.Equal(t, http.StatusAccepted, post())

	close(syncer.release)
	assert.Eventually(t, func() bool { return syncer.finished.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), syncer.calls.Load())

	// 上一次结束后可以再次触发
	assert.Eventually(t, func() bool {
		return post() == http.StatusAccepted && syncer.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}
