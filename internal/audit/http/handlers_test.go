package audithttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slooze/foodorder/internal/audit"
	"github.com/slooze/foodorder/internal/rbac"
)

type stubTimelineService struct {
	result      audit.Result
	exportRows  []audit.TimelineRow
	lastFilters audit.TimelineFilters
	calls       int
}

func (s *stubTimelineService) Timeline(ctx context.Context, p rbac.Principal, filters audit.TimelineFilters) (audit.Result, error) {
	s.calls++
	s.lastFilters = filters
	if err := rbac.Permit(p, rbac.OpViewAuditLog); err != nil {
		return audit.Result{}, err
	}
	return s.result, nil
}

func (s *stubTimelineService) Export(ctx context.Context, p rbac.Principal, filters audit.TimelineFilters) ([]audit.TimelineRow, error) {
	s.calls++
	s.lastFilters = filters
	if err := rbac.Permit(p, rbac.OpViewAuditLog); err != nil {
		return nil, err
	}
	return s.exportRows, nil
}

func newRouter(service *stubTimelineService) http.Handler {
	h := NewHandler(nil, service, rbac.Middleware{})
	h.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func request(method, target string, p *rbac.Principal) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if p != nil {
		req = req.WithContext(rbac.ContextWithPrincipal(req.Context(), *p))
	}
	return req
}

var admin = rbac.Principal{ID: "u-nick", Role: rbac.RoleAdmin}

func TestTimelineRequiresAdmin(t *testing.T) {
	service := &stubTimelineService{}
	router := newRouter(service)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, request(http.MethodGet, "/audit-logs", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	member := rbac.Principal{ID: "u-travis", Role: rbac.RoleMember, Region: rbac.RegionPtr(rbac.RegionAmerica)}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, request(http.MethodGet, "/audit-logs", &member))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Zero(t, service.calls)
}

func TestTimelineReturnsRows(t *testing.T) {
	rows := []audit.TimelineRow{{At: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), Actor: "u-nick", Action: "order.paid", Entity: "order", EntityID: "o-1"}}
	service := &stubTimelineService{result: audit.Result{Rows: rows, Paging: audit.PagingInfo{Page: 1, PageSize: 20}}}
	router := newRouter(service)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, request(http.MethodGet, "/audit-logs?from=2024-03-01&to=2024-03-15&action=order.paid", &admin))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got audit.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "o-1", got.Rows[0].EntityID)
	assert.Equal(t, "2024-03-01", service.lastFilters.From.Format("2006-01-02"))
	assert.Equal(t, "2024-03-16", service.lastFilters.To.Format("2006-01-02"))
	assert.Equal(t, "order.paid", service.lastFilters.Action)
}

func TestTimelineDefaultsAndValidation(t *testing.T) {
	service := &stubTimelineService{}
	router := newRouter(service)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, request(http.MethodGet, "/audit-logs?page_size=500", &admin))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "2024-03-08", service.lastFilters.From.Format("2006-01-02"))
	assert.Equal(t, 500, service.lastFilters.PageSize, "clamping is left to audit.Service")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, request(http.MethodGet, "/audit-logs", &admin))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, service.lastFilters.PageSize)

	for _, q := range []string{"page_size=-3", "from=yesterday", "from=2024-03-10&to=2024-03-01", "from=2023-01-01&to=2024-03-01", "page=0"} {
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, request(http.MethodGet, "/audit-logs?"+q, &admin))
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		assert.Contains(t, rr.Body.String(), `"code":"INVALID_INPUT"`)
	}
}

func TestExportCSV(t *testing.T) {
	service := &stubTimelineService{exportRows: []audit.TimelineRow{{Actor: "u-nick", Action: "order.created", Entity: "order", EntityID: "o-9"}}}
	router := newRouter(service)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, request(http.MethodGet, "/audit-logs/export.csv?from=2024-03-01&to=2024-03-05", &admin))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rr.Body.String(), "o-9")
}
