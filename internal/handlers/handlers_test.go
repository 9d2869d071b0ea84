package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/CG3-Media/dexo-activity/internal/config"
	"github.com/CG3-Media/dexo-activity/internal/models"
	"github.com/CG3-Media/dexo-activity/internal/render"
	"github.com/CG3-Media/dexo-activity/internal/services"
	"github.com/CG3-Media/dexo-activity/internal/storage"
	"github.com/CG3-Media/dexo-activity/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "s3cret"

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "activities.json"), time.UTC)
	require.NoError(t, err)
	renderer, err := render.NewRenderer(time.UTC)
	require.NoError(t, err)

	cfg := &config.Config{AppToken: testToken, Timezone: time.UTC}
	service := services.NewActivityService(store)
	activityHandler := NewActivityHandler(service)
	pageHandler := NewPageHandler(service, renderer)
	authHandler := NewAuthHandler(cfg)

	router := mux.NewRouter()
	router.HandleFunc("/auth", authHandler.ExchangeTokenHandler).Methods("GET")

	apiRoutes := router.PathPrefix("/api/activities").Subrouter()
	apiRoutes.Use(middleware.RequireAPI(cfg.AppToken))
	apiRoutes.HandleFunc("", activityHandler.CreateActivityHandler).Methods("POST")
	apiRoutes.HandleFunc("", activityHandler.ListActivitiesHandler).Methods("GET")
	apiRoutes.HandleFunc("/{id}", activityHandler.GetActivityHandler).Methods("GET")

	pageRoutes := router.PathPrefix("/").Subrouter()
	pageRoutes.Use(middleware.RequirePage(cfg.AppToken, renderer))
	pageRoutes.HandleFunc("/", pageHandler.TimelineHandler).Methods("GET")

	return router
}

func doRequest(router *mux.Router, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func pageRequest(path string) *http.Request {
	req := httptest.NewRequest("GET", path, nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookieName, Value: testToken})
	return req
}

func apiRequest(method, path, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func postActivity(t *testing.T, router *mux.Router, body string) models.Activity {
	t.Helper()
	rec := doRequest(router, apiRequest("POST", "/api/activities", body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a models.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	return a
}

func TestTokenExchange(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(router, httptest.NewRequest("GET", "/auth?token=wrong", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = doRequest(router, httptest.NewRequest("GET", "/auth?token="+testToken, nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.TokenCookieName, cookies[0].Name)
	assert.Equal(t, testToken, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	assert.Equal(t, 365*24*60*60, cookies[0].MaxAge)
}

func TestPageAuthGate(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(router, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "This log is private")

	rec = doRequest(router, pageRequest("/"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIAuthGate(t *testing.T) {
	router := newTestRouter(t)

	// No credentials at all.
	rec := doRequest(router, httptest.NewRequest("GET", "/api/activities", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	// Wrong bearer token.
	req := httptest.NewRequest("GET", "/api/activities", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = doRequest(router, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Bearer header alone is enough for a write, no cookie needed.
	created := postActivity(t, router, `{"content":"via bearer"}`)
	assert.Equal(t, "via bearer", created.Content)
}

func TestCreateActivityValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(router, apiRequest("POST", "/api/activities", `{"category":"work"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"content is required"}`, rec.Body.String())

	rec = doRequest(router, apiRequest("POST", "/api/activities", `{"content":"   "}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, apiRequest("POST", "/api/activities", `not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// None of the failed attempts created anything.
	rec = doRequest(router, apiRequest("GET", "/api/activities", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateActivityDefaultsCategory(t *testing.T) {
	router := newTestRouter(t)

	created := postActivity(t, router, `{"content":"Read a book"}`)
	assert.Equal(t, "general", created.Category)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestGetActivityByID(t *testing.T) {
	router := newTestRouter(t)

	created := postActivity(t, router, `{"content":"Deployed","category":"work","details":"v2 rollout"}`)

	rec := doRequest(router, apiRequest("GET", "/api/activities/1", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	var got models.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Deployed", got.Content)
	assert.Equal(t, "work", got.Category)
	assert.Equal(t, "v2 rollout", got.Details)

	rec = doRequest(router, apiRequest("GET", "/api/activities/999", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(router, apiRequest("GET", "/api/activities/abc", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListActivitiesOrderAndFilters(t *testing.T) {
	router := newTestRouter(t)
	postActivity(t, router, `{"content":"first entry"}`)
	postActivity(t, router, `{"content":"second entry","category":"work"}`)
	postActivity(t, router, `{"content":"third entry"}`)

	rec := doRequest(router, apiRequest("GET", "/api/activities", ""))
	var list []models.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "third entry", list[0].Content)
	assert.Equal(t, "first entry", list[2].Content)

	rec = doRequest(router, apiRequest("GET", "/api/activities?q=WORK", ""))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "second entry", list[0].Content)

	rec = doRequest(router, apiRequest("GET", "/api/activities?limit=2", ""))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	// An absurd limit is clamped, not an error.
	rec = doRequest(router, apiRequest("GET", "/api/activities?limit=10000", ""))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, apiRequest("GET", "/api/activities?offset=2", ""))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "first entry", list[0].Content)
}

func TestTimelineScenario(t *testing.T) {
	router := newTestRouter(t)

	// Empty store.
	rec := doRequest(router, pageRequest("/"))
	assert.Contains(t, rec.Body.String(), "No activities yet")

	postActivity(t, router, `{"content":"Went for a run","category":"fitness"}`)

	// Search hit, with the term highlighted.
	rec = doRequest(router, pageRequest("/?q=run"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<mark>run</mark>")
	assert.Contains(t, rec.Body.String(), "fitness")

	// Search miss.
	rec = doRequest(router, pageRequest("/?q=swimming"))
	assert.Contains(t, rec.Body.String(), "No matching activities")

	// A day with no records.
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	rec = doRequest(router, pageRequest("/?date="+tomorrow))
	assert.Contains(t, rec.Body.String(), "No activities on this day")

	// Today's tab exists and stored markup is escaped.
	postActivity(t, router, `{"content":"<script>alert(1)</script>"}`)
	rec = doRequest(router, pageRequest("/"))
	assert.Contains(t, rec.Body.String(), ">Today<")
	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}
