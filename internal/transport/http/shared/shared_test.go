package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gdp/internal/platform/ai"
	"gdp/internal/platform/validate"
)

var errMissing = errors.New("thing not found")

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestFailMapsErrors(t *testing.T) {
	var issues validate.Issues
	issues.Add("name", "is required")

	cases := []struct {
		err  error
		want int
		code string
	}{
		{issues.Err(), http.StatusBadRequest, "validation_error"},
		{fmt.Errorf("load: %w", errMissing), http.StatusNotFound, "not_found"},
		{ai.ErrUnavailable, http.StatusServiceUnavailable, "ai_unavailable"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		Fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), c.err, "load thing", NotFound(errMissing))
		if rec.Code != c.want {
			t.Fatalf("%v: got %d, want %d", c.err, rec.Code, c.want)
		}
		body := decodeEnvelope(t, rec)
		if code := body["error"].(map[string]any)["code"]; code != c.code {
			t.Fatalf("%v: got code %v, want %s", c.err, code, c.code)
		}
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	page := Paginate(items, Pagination{Limit: 2, Offset: 4})
	if page.Total != 5 || len(page.Items) != 1 || page.Items[0] != 5 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if empty := Paginate(items, Pagination{Limit: 2, Offset: 10}); len(empty.Items) != 0 {
		t.Fatalf("expected empty page, got %+v", empty)
	}

	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=-3", nil)
	p := ParsePagination(req, 50, 200)
	if p.Limit != 200 || p.Offset != 0 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
}
