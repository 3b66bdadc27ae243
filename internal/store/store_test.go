package store

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enzy247/allocd/internal/planner"
)

// newTestStore spins up an embedded NATS server and a store on top of
// it, both torn down with the test.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	embedded, err := StartEmbedded(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(embedded.Shutdown)

	nc, err := nats.Connect(embedded.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	s, err := New(nc, &Config{BucketPrefix: "allocd_test"}, nil)
	require.NoError(t, err)
	return s
}

func TestNew_RequiresConnection(t *testing.T) {
	_, err := New(nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats connection is required")
}

func TestResourceCRUD(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateResource(planner.Resource{Name: "Dana", Type: "developer", AvailableHours: 160})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := s.GetResource(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	created.AvailableHours = 120
	updated, err := s.UpdateResource(created)
	require.NoError(t, err)
	assert.InDelta(t, 120.0, updated.AvailableHours, 1e-9)

	second, err := s.CreateResource(planner.Resource{Name: "Sam", Type: "designer", AvailableHours: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)

	list, err := s.ListResources()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.InDelta(t, 120.0, list[0].AvailableHours, 1e-9)

	require.NoError(t, s.DeleteResource(created.ID))
	_, err = s.GetResource(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.DeleteResource(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskCRUD(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateTask(planner.Task{Title: "Develop feature", RequiredHours: 40, Priority: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	created.Priority = 2
	_, err = s.UpdateTask(created)
	require.NoError(t, err)

	got, err := s.GetTask(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Priority)

	require.NoError(t, s.DeleteTask(created.ID))
	list, err := s.ListTasks()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReplaceAlternatives(t *testing.T) {
	s := newTestStore(t)

	first, err := s.ReplaceAlternatives([]Alternative{
		{RunID: "run-1", Explanation: "a", Score: 90, CreatedAt: time.Now(),
			Allocations: []planner.Allocation{{ResourceID: 1, TaskID: 1, Hours: 5}}},
		{RunID: "run-1", Explanation: "b", Score: 70, CreatedAt: time.Now(),
			Allocations: []planner.Allocation{{ResourceID: 1, TaskID: 1, Hours: 3}}},
	})
	require.NoError(t, err)
	require.Len(t, first, 2)

	// A second run wipes the first and assigns fresh IDs.
	second, err := s.ReplaceAlternatives([]Alternative{
		{RunID: "run-2", Explanation: "c", Score: 95, CreatedAt: time.Now(),
			Allocations: []planner.Allocation{{ResourceID: 2, TaskID: 1, Hours: 4}}},
	})
	require.NoError(t, err)
	require.Len(t, second, 1)

	list, err := s.ListAlternatives()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "run-2", list[0].RunID)
	assert.Equal(t, "c", list[0].Explanation)

	_, err = s.GetAlternative(first[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetAlternative(second[0].ID)
	require.NoError(t, err)
	assert.InDelta(t, 95.0, got.Score, 1e-9)
}

func TestListAlternatives_PreservesRankingOrder(t *testing.T) {
	s := newTestStore(t)

	alts := []Alternative{
		{RunID: "r", Explanation: "best", Score: 99},
		{RunID: "r", Explanation: "mid", Score: 55},
		{RunID: "r", Explanation: "worst", Score: 12},
	}
	_, err := s.ReplaceAlternatives(alts)
	require.NoError(t, err)

	list, err := s.ListAlternatives()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "best", list[0].Explanation)
	assert.Equal(t, "worst", list[2].Explanation)
}

func TestChoicesAndModelSnapshot(t *testing.T) {
	s := newTestStore(t)

	ml := 0.73
	choice, err := s.AppendChoice(Choice{
		AlternativeID: 7,
		SelectedAt:    time.Now().UTC(),
		Coverage:      0.8,
		TotalScore:    120,
		NumResources:  3,
		NumTasks:      4,
		MLScore:       &ml,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), choice.ID)

	choices, err := s.ListChoices()
	require.NoError(t, err)
	require.Len(t, choices, 1)
	assert.Equal(t, int64(7), choices[0].AlternativeID)
	require.NotNil(t, choices[0].MLScore)
	assert.InDelta(t, 0.73, *choices[0].MLScore, 1e-9)

	_, err = s.LoadModel()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveModel([]byte(`{"trained":true}`)))
	data, err := s.LoadModel()
	require.NoError(t, err)
	assert.JSONEq(t, `{"trained":true}`, string(data))
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateResource(planner.Resource{Name: "Dana", Type: "developer", AvailableHours: 10})
	require.NoError(t, err)
	_, err = s.CreateTask(planner.Task{Title: "Develop feature", RequiredHours: 8, Priority: 1})
	require.NoError(t, err)
	_, err = s.ReplaceAlternatives([]Alternative{{RunID: "r", Score: 1}})
	require.NoError(t, err)

	counts, err := s.ClearAll()
	require.NoError(t, err)
	assert.Equal(t, 1, counts["resources"])
	assert.Equal(t, 1, counts["tasks"])
	assert.Equal(t, 1, counts["alternatives"])
	assert.Equal(t, 0, counts["choices"])

	resources, err := s.ListResources()
	require.NoError(t, err)
	assert.Empty(t, resources)
}
