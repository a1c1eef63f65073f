package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cyp0633/termplan/export"
	"github.com/cyp0633/termplan/plan"
	"github.com/cyp0633/termplan/planner/holiday"
	"github.com/cyp0633/termplan/planner/recurrence"
	"github.com/cyp0633/termplan/server/storage"
	"github.com/cyp0633/termplan/server/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const algorithmsPlan = `course: {name: Algorithms, code: CS201}
start: 2025-01-01
end: 2025-01-31
weekdays: [Monday, Wednesday]
exclude_holidays: true
excluded_ranges: [{start: 2025-01-13, end: 2025-01-17}]
custom_dates: [2025-02-03]
topics:
  2025-01-06: ["1 - Intro"]
  2025-01-14: ["stray"]
catalog: [Intro, Sorting]
`

func newTestHandler(t *testing.T) (*Handler, *memory.Store) {
	t.Helper()
	store := memory.New()
	def, err := plan.Parse(strings.NewReader(algorithmsPlan))
	require.NoError(t, err)
	_, err = store.CreatePlan(context.Background(), "algo", def)
	require.NoError(t, err)

	stamp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	h := NewHandler(store, holiday.Default(), recurrence.NewEngine(),
		WithICSOptions(export.ICSOptions{Duration: time.Hour, Now: func() time.Time { return stamp }}),
		WithCustomHeaders(map[string]string{"X-Planner": "termplan"}))
	return h, store
}

func do(h http.Handler, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_List(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(h, http.MethodGet, "/plans", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "termplan", rec.Header().Get("X-Planner"))

	var items []PlanInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "algo", items[0].ID)
	assert.Equal(t, "Algorithms", items[0].CourseName)
	assert.NotEmpty(t, items[0].ETag)
}

func TestHandler_GetSummary(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(h, http.MethodGet, "/plans/algo", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	var resp struct {
		ID      string `json:"id"`
		Summary struct {
			TeachingDays    int      `json:"teaching_days"`
			TotalWeeks      int      `json:"total_weeks"`
			SelectedDays    []string `json:"selected_days"`
			ExcludedCount   int      `json:"excluded_count"`
			OrphanedTopics  []string `json:"orphaned_topics"`
			RemovedHolidays []struct {
				Date string `json:"date"`
				Name string `json:"name"`
			} `json:"removed_holidays"`
		} `json:"summary"`
		Catalog []string `json:"catalog"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "algo", resp.ID)
	assert.Equal(t, 8, resp.Summary.TeachingDays)
	assert.Equal(t, 4, resp.Summary.TotalWeeks)
	assert.Equal(t, []string{"Monday", "Wednesday"}, resp.Summary.SelectedDays)
	assert.Equal(t, 6, resp.Summary.ExcludedCount)
	assert.Equal(t, []string{"2025-01-14"}, resp.Summary.OrphanedTopics)
	require.Len(t, resp.Summary.RemovedHolidays, 1)
	assert.Equal(t, "2025-01-26", resp.Summary.RemovedHolidays[0].Date)
	assert.Equal(t, []string{"1 - Intro", "2 - Sorting"}, resp.Catalog)
}

func TestHandler_Weeks(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(h, http.MethodGet, "/plans/algo/weeks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var weeks []struct {
		Week  int `json:"week"`
		Dates []struct {
			Date   string   `json:"date"`
			Topics []string `json:"topics"`
		} `json:"dates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &weeks))

	var order []int
	for _, w := range weeks {
		order = append(order, w.Week)
	}
	assert.Equal(t, []int{1, 2, 4, 5, 6}, order)
	assert.Equal(t, "2025-01-06", weeks[1].Dates[0].Date)
	assert.Equal(t, []string{"1 - Intro"}, weeks[1].Dates[0].Topics)
	assert.Equal(t, []string{}, weeks[1].Dates[1].Topics)
	assert.Equal(t, "2025-02-03", weeks[4].Dates[0].Date)
}

func TestHandler_Export(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"ics", "text/calendar; charset=utf-8", "DTSTART;VALUE=DATE:20250203"},
		{"csv", "text/csv; charset=utf-8", "2025-01-06,Algorithms,1 - Intro"},
		{"html", "application/xhtml+xml; charset=utf-8", "Course Schedule Summary"},
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "PK"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := do(h, http.MethodGet, "/plans/algo/export/"+tt.format, "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.contains)
			assert.Contains(t, rec.Header().Get("Content-Disposition"), "Algorithms_schedule."+tt.format)
			assert.NotContains(t, rec.Body.String(), "stray")
		})
	}
}

func TestHandler_ExportCSVRecordsPerDate(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(h, http.MethodGet, "/plans/algo/export/csv", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	// header plus one row per combined date
	assert.Len(t, lines, 9)
}

func TestHandler_ExportNotModified(t *testing.T) {
	h, store := newTestHandler(t)

	rec := do(h, http.MethodGet, "/plans/algo/export/ics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec = do(h, http.MethodGet, "/plans/algo/export/ics", "", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(h, http.MethodGet, "/plans/algo/export/ics", "", map[string]string{"If-None-Match": `"other", ` + etag})
	assert.Equal(t, http.StatusNotModified, rec.Code)

	// Other formats carry their own tag
	rec = do(h, http.MethodGet, "/plans/algo/export/csv", "", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusOK, rec.Code)

	// A changed plan invalidates the tag
	def, err := plan.Parse(strings.NewReader(strings.Replace(algorithmsPlan, "exclude_holidays: true", "exclude_holidays: false", 1)))
	require.NoError(t, err)
	_, _, err = store.PutPlan(context.Background(), "algo", def)
	require.NoError(t, err)

	rec = do(h, http.MethodGet, "/plans/algo/export/ics", "", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, etag, rec.Header().Get("ETag"))
}

func TestHandler_Errors(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name   string
		method string
		target string
		status int
	}{
		{"unknown plan", http.MethodGet, "/plans/missing", http.StatusNotFound},
		{"unknown plan weeks", http.MethodGet, "/plans/missing/weeks", http.StatusNotFound},
		{"unknown plan export", http.MethodGet, "/plans/missing/export/ics", http.StatusNotFound},
		{"unknown format", http.MethodGet, "/plans/algo/export/pdf", http.StatusBadRequest},
		{"delete unknown plan", http.MethodDelete, "/plans/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, tt.method, tt.target, "", nil)
			assert.Equal(t, tt.status, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHandler_StorageFailure(t *testing.T) {
	store := new(storage.MockStorage)
	store.On("ListPlans", mock.Anything).Return(nil, errors.New("backend down"))
	store.On("GetPlan", mock.Anything, "algo").Return(nil, errors.New("backend down"))

	h := NewHandler(store, nil, nil)

	rec := do(h, http.MethodGet, "/plans", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "backend down")

	rec = do(h, http.MethodGet, "/plans/algo/export/csv", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	store.AssertExpectations(t)
}

func TestHandler_PutAndDelete(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(h, http.MethodPut, "/plans/algo2", algorithmsPlan, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	etag := rec.Header().Get("ETag")
	assert.NotEmpty(t, etag)

	rec = do(h, http.MethodPut, "/plans/algo2", algorithmsPlan, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, etag, rec.Header().Get("ETag"))

	rec = do(h, http.MethodPut, "/plans/bad", "course: {name: A}\nstart: 2025-02-10\nend: 2025-02-01\n", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodDelete, "/plans/algo2", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodGet, "/plans/algo2", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_PutTooLarge(t *testing.T) {
	store := memory.New()
	h := NewHandler(store, nil, nil, WithMaxBodyBytes(32))

	rec := do(h, http.MethodPut, "/plans/algo", algorithmsPlan, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrPlanTooLarge.Message, body.Error)

	_, err := store.GetPlan(context.Background(), "algo")
	assert.True(t, storage.IsNotFound(err))
}

func TestHandler_PutCreatedFromStore(t *testing.T) {
	store := new(storage.MockStorage)
	store.On("PutPlan", mock.Anything, "algo", mock.Anything).
		Return(&storage.Plan{ID: "algo", ETag: `"v1"`}, true, nil).Once()
	store.On("PutPlan", mock.Anything, "algo", mock.Anything).
		Return(&storage.Plan{ID: "algo", ETag: `"v2"`}, false, nil).Once()

	h := NewHandler(store, nil, nil)

	rec := do(h, http.MethodPut, "/plans/algo", algorithmsPlan, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `"v1"`, rec.Header().Get("ETag"))

	rec = do(h, http.MethodPut, "/plans/algo", algorithmsPlan, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// the created flag comes from the write itself, not a prior lookup
	store.AssertNotCalled(t, "GetPlan", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestHandler_InvalidStoredPlan(t *testing.T) {
	def, err := plan.Parse(strings.NewReader(algorithmsPlan))
	require.NoError(t, err)
	def.Start, def.End = def.End, def.Start

	store := new(storage.MockStorage)
	store.On("GetPlan", mock.Anything, "algo").
		Return(&storage.Plan{ID: "algo", Definition: def, ETag: `"v1"`}, nil)

	h := NewHandler(store, nil, nil)
	for _, target := range []string{"/plans/algo", "/plans/algo/weeks", "/plans/algo/export/csv"} {
		t.Run(target, func(t *testing.T) {
			rec := do(h, http.MethodGet, target, "", nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, ErrInvalidPlan.Message, body.Error)
		})
	}
}

func TestEtagMatches(t *testing.T) {
	assert.False(t, etagMatches("", `"a"`))
	assert.True(t, etagMatches(`"a"`, `"a"`))
	assert.True(t, etagMatches(`W/"a"`, `"a"`))
	assert.True(t, etagMatches(`"b", "a"`, `"a"`))
	assert.True(t, etagMatches("*", `"a"`))
	assert.False(t, etagMatches(`"b"`, `"a"`))
}
