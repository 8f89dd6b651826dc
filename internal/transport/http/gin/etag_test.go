package httpgin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONWithCache(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	writeJSONWithCache(c, http.StatusOK, gin.H{"n": 1}, "private, max-age=5", true)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "private, max-age=5", w.Header().Get("Cache-Control"))
	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)
	require.JSONEq(t, `{"n":1}`, w.Body.String())

	// a matching If-None-Match short-circuits to 304 with no body
	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.Header.Set("If-None-Match", tag)

	writeJSONWithCache(c2, http.StatusOK, gin.H{"n": 1}, "private, max-age=5", true)
	// CreateTestContext bypasses the engine, which normally flushes the
	// deferred status written by c.Status after the handler chain runs.
	c2.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNotModified, w2.Code)
	require.Empty(t, w2.Body.String())
	require.Equal(t, tag, w2.Header().Get("ETag"))
}

func TestEtagMatches(t *testing.T) {
	require.True(t, etagMatches(`*`, `W/"abc"`))
	require.True(t, etagMatches(`W/"abc"`, `W/"abc"`))
	require.True(t, etagMatches(`"abc"`, `W/"abc"`))
	require.True(t, etagMatches(`"xyz", W/"abc"`, `W/"abc"`))
	require.False(t, etagMatches(`"xyz"`, `W/"abc"`))
	require.False(t, etagMatches(``, `W/"abc"`))
}
