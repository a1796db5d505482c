package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/storefront/internal/domain"
	"github.com/oakmart/storefront/internal/segments"
)

type stubDirectory struct {
	users []domain.UserRecord
	err   error
}

func (s *stubDirectory) List(ctx context.Context) ([]domain.UserRecord, error) {
	return s.users, s.err
}

func spendOf(v float64) *float64 { return &v }

func directoryFixture() *stubDirectory {
	return &stubDirectory{users: []domain.UserRecord{
		{ID: "u1", Email: "ada@example.com", FirstName: "Ada", Roles: []string{"admin"},
			Status: domain.UserActive, SignupSource: "email", Spend: spendOf(150)},
		{ID: "u2", Email: "grace@example.com", FirstName: "Grace", Roles: []string{"editor"},
			Status: domain.UserInactive, SignupSource: "google", Spend: spendOf(200)},
		{ID: "u3", Email: "alan@example.com", FirstName: "Alan", Roles: []string{"viewer"},
			Status: domain.UserActive, SignupSource: "github", Spend: spendOf(50)},
	}}
}

func newTestRouter(t *testing.T, dir *stubDirectory) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := segments.NewStore(db)
	usersAPI := NewUsersAPI(dir, store)
	segmentsAPI := NewSegmentsAPI(store, dir)
	return SetupRoutes(usersAPI, segmentsAPI, []string{"http://localhost:5173"}), mock
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func userIDs(t *testing.T, body map[string]any, key string) []string {
	t.Helper()
	raw, ok := body[key].([]any)
	require.True(t, ok, "missing %q in response", key)
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		u, ok := e.(map[string]any)
		require.True(t, ok)
		out = append(out, u["id"].(string))
	}
	return out
}

func segmentRow(id uuid.UUID, name string, criteriaJSON string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "name", "description", "filter_criteria", "created_by", "created_at", "updated_at",
	}).AddRow(id.String(), name, "", []byte(criteriaJSON), "", now, now)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, directoryFixture())
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestListOperators(t *testing.T) {
	router, _ := newTestRouter(t, directoryFixture())
	rec := doJSON(t, router, http.MethodGet, "/api/admin/operators", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var metas []segments.OperatorMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metas))
	assert.Len(t, metas, 10)
}

func TestListUsers_QueryParamFilters(t *testing.T) {
	router, _ := newTestRouter(t, directoryFixture())

	rec := doJSON(t, router, http.MethodGet, "/api/admin/users/?status=active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []string{"u1", "u3"}, userIDs(t, body, "users"))
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(2), body["count"])

	// Repeated params OR within a field.
	rec = doJSON(t, router, http.MethodGet, "/api/admin/users/?role=admin&role=editor", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"u1", "u2"}, userIDs(t, decodeBody(t, rec), "users"))

	// Across fields the filters AND.
	rec = doJSON(t, router, http.MethodGet, "/api/admin/users/?status=active&q=alan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"u3"}, userIDs(t, decodeBody(t, rec), "users"))
}

func TestListUsers_DirectoryFailure(t *testing.T) {
	router, _ := newTestRouter(t, &stubDirectory{err: errors.New("db down")})
	rec := doJSON(t, router, http.MethodGet, "/api/admin/users/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFilterUsers_AdHocFilters(t *testing.T) {
	router, _ := newTestRouter(t, directoryFixture())

	rec := doJSON(t, router, http.MethodPost, "/api/admin/users/filter", FilterUsersRequest{
		Filters: segments.UserFilters{Status: []string{"active"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, []string{"u1", "u3"}, userIDs(t, body, "users"))

	state, ok := body["state"].(map[string]any)
	require.True(t, ok)
	assert.Nil(t, state["active_segment_id"], "ad-hoc filters must not carry a segment")
}

func TestFilterUsers_SegmentActivation(t *testing.T) {
	dir := directoryFixture()
	router, mock := newTestRouter(t, dir)

	segID := uuid.New()
	criteriaJSON := `{"conditions":[{"field":"spend","operator":"greater_than","value":100}],"conjunction":"and"}`
	mock.ExpectQuery("SELECT (.+) FROM saved_segments").
		WithArgs(segID).
		WillReturnRows(segmentRow(segID, "Spenders", criteriaJSON))

	rec := doJSON(t, router, http.MethodPost, "/api/admin/users/filter", FilterUsersRequest{
		Filters:   segments.UserFilters{Status: []string{"inactive"}},
		SegmentID: &segID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	// The segment supersedes the filters: inactive u2 and active u1 both spend > 100.
	assert.Equal(t, []string{"u1", "u2"}, userIDs(t, body, "users"))

	state, ok := body["state"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, segID.String(), state["active_segment_id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterUsers_UnknownSegmentIs404(t *testing.T) {
	router, mock := newTestRouter(t, directoryFixture())

	segID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM saved_segments").
		WillReturnError(sql.ErrNoRows)

	rec := doJSON(t, router, http.MethodPost, "/api/admin/users/filter", FilterUsersRequest{
		SegmentID: &segID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterUsers_MalformedBody(t *testing.T) {
	router, _ := newTestRouter(t, directoryFixture())
	req := httptest.NewRequest(http.MethodPost, "/api/admin/users/filter", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSegment(t *testing.T) {
	router, mock := newTestRouter(t, directoryFixture())

	mock.ExpectExec("INSERT INTO saved_segments").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doJSON(t, router, http.MethodPost, "/api/admin/segments/", segments.CreateSegmentInput{
		Name: "Active admins",
		FilterCriteria: segments.FilterCriteria{
			Conditions: []segments.FilterCriterion{
				{Field: "status", Operator: segments.OpEquals, Value: segments.StringValue("active")},
			},
			Conjunction: segments.ConjunctionAnd,
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var seg segments.SavedSegment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seg))
	assert.NotEqual(t, uuid.Nil, seg.ID)
	assert.Equal(t, "Active admins", seg.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSegment_EmptyNameIs400(t *testing.T) {
	router, mock := newTestRouter(t, directoryFixture())

	rec := doJSON(t, router, http.MethodPost, "/api/admin/segments/", segments.CreateSegmentInput{
		Name:           "",
		FilterCriteria: segments.FilterCriteria{Conjunction: segments.ConjunctionAnd},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", decodeBody(t, rec)["code"])
	assert.NoError(t, mock.ExpectationsWereMet(), "validation failures must not reach the store")
}

func TestListSegments_EmptyIsJSONArray(t *testing.T) {
	router, mock := newTestRouter(t, directoryFixture())

	mock.ExpectQuery("SELECT (.+) FROM saved_segments").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "filter_criteria", "created_by", "created_at", "updated_at",
		}))

	rec := doJSON(t, router, http.MethodGet, "/api/admin/segments/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSegments_StoreFailureIs502(t *testing.T) {
	router, mock := newTestRouter(t, directoryFixture())

	mock.ExpectQuery("SELECT (.+) FROM saved_segments").
		WillReturnError(errors.New("connection refused"))

	rec := doJSON(t, router, http.MethodGet, "/api/admin/segments/", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "store_error", decodeBody(t, rec)["code"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSegment_InvalidIDIs400(t *testing.T) {
	router, _ := newTestRouter(t, directoryFixture())
	rec := doJSON(t, router, http.MethodGet, "/api/admin/segments/not-a-uuid/", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivateSegment(t *testing.T) {
	dir := directoryFixture()
	router, mock := newTestRouter(t, dir)

	segID := uuid.New()
	criteriaJSON := `{"conditions":[{"field":"status","operator":"equals","value":"active"},{"field":"spend","operator":"greater_than","value":100}],"conjunction":"or"}`
	mock.ExpectQuery("SELECT (.+) FROM saved_segments").
		WithArgs(segID).
		WillReturnRows(segmentRow(segID, "Active or big spender", criteriaJSON))

	rec := doJSON(t, router, http.MethodPost, "/api/admin/segments/"+segID.String()+"/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, []string{"u1", "u2", "u3"}, userIDs(t, body, "users"))
	assert.Equal(t, float64(3), body["total"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateSegment_NotFoundIs404(t *testing.T) {
	router, mock := newTestRouter(t, directoryFixture())

	mock.ExpectQuery("SELECT (.+) FROM saved_segments").
		WillReturnError(sql.ErrNoRows)

	rec := doJSON(t, router, http.MethodPost, "/api/admin/segments/"+uuid.NewString()+"/activate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
