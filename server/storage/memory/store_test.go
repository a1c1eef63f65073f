package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cyp0633/termplan/plan"
	"github.com/cyp0633/termplan/planner/date"
	"github.com/cyp0633/termplan/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ storage.Storage = (*Store)(nil)

func testDefinition(name string) *plan.Definition {
	return &plan.Definition{
		Course:   plan.CourseInfo{Name: name},
		Start:    date.MustParse("2025-01-01"),
		End:      date.MustParse("2025-01-31"),
		Weekdays: []string{"Monday", "Wednesday"},
	}
}

func TestStore_Plan(t *testing.T) {
	store := New()
	ctx := context.Background()

	// Test getting non-existent plan
	_, err := store.GetPlan(ctx, "nonexistent")
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))

	created, err := store.CreatePlan(ctx, "algo", testDefinition("Algorithms"))
	require.NoError(t, err)
	assert.Equal(t, "algo", created.ID)
	assert.Regexp(t, `^"[0-9a-f]{40}"$`, created.ETag)

	// Test creating duplicate plan
	_, err = store.CreatePlan(ctx, "algo", testDefinition("Algorithms"))
	assert.True(t, storage.IsAlreadyExists(err))

	got, err := store.GetPlan(ctx, "algo")
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", got.Definition.Course.Name)
	assert.Equal(t, created.ETag, got.ETag)

	require.NoError(t, store.DeletePlan(ctx, "algo"))
	_, err = store.GetPlan(ctx, "algo")
	assert.True(t, storage.IsNotFound(err))
	assert.True(t, storage.IsNotFound(store.DeletePlan(ctx, "algo")))
}

func TestStore_PutPlanETag(t *testing.T) {
	store := New()
	ctx := context.Background()

	first, created, err := store.PutPlan(ctx, "algo", testDefinition("Algorithms"))
	require.NoError(t, err)
	assert.True(t, created)

	same, created, err := store.PutPlan(ctx, "algo", testDefinition("Algorithms"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ETag, same.ETag)
	assert.Equal(t, first.Modified, same.Modified)

	changed := testDefinition("Algorithms")
	changed.ExcludeHolidays = true
	updated, created, err := store.PutPlan(ctx, "algo", changed)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NotEqual(t, first.ETag, updated.ETag)
	assert.Equal(t, first.Created, updated.Created)
}

func TestStore_InvalidInput(t *testing.T) {
	store := New()
	ctx := context.Background()

	inverted := testDefinition("Algorithms")
	inverted.Start, inverted.End = inverted.End, inverted.Start

	tests := []struct {
		name string
		id   string
		def  *plan.Definition
	}{
		{"empty id", "", testDefinition("A")},
		{"nil definition", "x", nil},
		{"missing name", "x", testDefinition("")},
		{"inverted range", "x", inverted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := store.PutPlan(ctx, tt.id, tt.def)
			var serr *storage.Error
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, storage.ErrInvalidInput, serr.Type)
		})
	}
}

func TestStore_ListPlans(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		_, err := store.CreatePlan(ctx, id, testDefinition("Course "+id))
		require.NoError(t, err)
	}

	plans, err := store.ListPlans(ctx)
	require.NoError(t, err)
	var ids []string
	for _, p := range plans {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestStore_Concurrent(t *testing.T) {
	store := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("plan-%d", i%3)
			_, _, _ = store.PutPlan(ctx, id, testDefinition(id))
			_, _ = store.GetPlan(ctx, id)
			_, _ = store.ListPlans(ctx)
		}(i)
	}
	wg.Wait()

	plans, err := store.ListPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 3)
}

func TestStore_PutPlanCreatedOnce(t *testing.T) {
	store := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := store.PutPlan(ctx, "algo", testDefinition("Algorithms"))
			assert.NoError(t, err)
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, createdCount, "exactly one concurrent put creates the plan")
}
