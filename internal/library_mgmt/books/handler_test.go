package books

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), newTestService(t))
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

const bookJSON = `{"title":"Dune","authors":[{"first_name":"Frank","last_name":"Herbert"}],"category":"FICTION","isbn":"978-0441013593","total_copies":2}`

func TestHandlerCRUD(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/books", bookJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 2, created.AvailableCopies)
	assert.Equal(t, "/api/books/1", w.Header().Get("Location"))

	w = doJSON(r, http.MethodGet, "/api/books/1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/books", "")
	var list []BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = doJSON(r, http.MethodPut, "/api/books/1", strings.Replace(bookJSON, `"Dune"`, `"Dune Messiah"`, 1))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Dune Messiah", updated.Title)

	w = doJSON(r, http.MethodDelete, "/api/books/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(r, http.MethodDelete, "/api/books/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodGet, "/api/books/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerErrors(t *testing.T) {
	r := newTestRouter(t)
	cases := []struct {
		method, path, body string
		status             int
		code               string
	}{
		{http.MethodGet, "/api/books/abc", "", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{http.MethodGet, "/api/books/0", "", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{http.MethodGet, "/api/books/7", "", http.StatusNotFound, "NOT_FOUND"},
		{http.MethodPost, "/api/books", "{", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{http.MethodPost, "/api/books", `{"title":""}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{http.MethodPut, "/api/books/7", bookJSON, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		w := doJSON(r, tc.method, tc.path, tc.body)
		assert.Equal(t, tc.status, w.Code, "%s %s", tc.method, tc.path)
		var body errorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Error.Code, "%s %s", tc.method, tc.path)
	}
}

func TestHandlerImport(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/books/import?encoding=utf-8", strings.NewReader(importCSV))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res ImportBooksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.OkCount)
}
