package filter

import (
	"slices"
	"testing"
	"time"

	"github.com/adanyl0v/go-tasks/internal/models"
)

var now = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func fixture() []models.Task {
	day := 24 * time.Hour
	return []models.Task{
		{ID: "t1", Priority: models.PriorityLow, Deadline: now.Add(-day), CreatedAt: now.Add(-5 * day), LabelIDs: []string{"work"}},
		{ID: "t2", Priority: models.PriorityHigh, Deadline: now.Add(day), CreatedAt: now.Add(-4 * day), LabelIDs: []string{"home"}},
		{ID: "t3", Priority: models.PriorityMedium, Deadline: now.Add(-2 * day), CreatedAt: now.Add(-3 * day), Completed: true},
		{ID: "t4", Priority: models.PriorityHigh, Deadline: now.Add(3 * day), CreatedAt: now.Add(-2 * day), LabelIDs: []string{"work", "home"}},
		{ID: "t5", Priority: models.PriorityMedium, Deadline: now.Add(2 * day), CreatedAt: now.Add(-1 * day), Completed: true},
	}
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}

func TestApplyDefaultsSortsByCreatedDesc(t *testing.T) {
	got := ids(Apply(fixture(), Default(), now))
	want := []string{"t5", "t4", "t3", "t2", "t1"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestApplyZeroOptionsEqualsDefault(t *testing.T) {
	if !slices.Equal(ids(Apply(fixture(), Options{}, now)), ids(Apply(fixture(), Default(), now))) {
		t.Fatal("zero options must behave like Default")
	}
}

func TestApplyPredicates(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		want []string
	}{
		{"priority high", Options{Priority: models.PriorityHigh, SortBy: SortCreatedAt, Order: OrderAsc}, []string{"t2", "t4"}},
		{"completed", Options{Completed: CompletionCompleted, Order: OrderAsc}, []string{"t3", "t5"}},
		{"incomplete", Options{Completed: CompletionIncomplete, Order: OrderAsc}, []string{"t1", "t2", "t4"}},
		{"overdue", Options{Overdue: OverdueOnly, Order: OrderAsc}, []string{"t1"}},
		{"not overdue", Options{Overdue: OverdueNot, Order: OrderAsc}, []string{"t2", "t3", "t4", "t5"}},
		{"labels any-of", Options{LabelIDs: []string{"home", "missing"}, Order: OrderAsc}, []string{"t2", "t4"}},
		{"combined", Options{Priority: models.PriorityHigh, LabelIDs: []string{"work"}, Completed: CompletionIncomplete, Order: OrderAsc}, []string{"t4"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Apply(fixture(), tc.opts, now))
			if !slices.Equal(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	opts := Options{Completed: CompletionIncomplete, SortBy: SortPriority, Order: OrderDesc}
	once := Apply(fixture(), opts, now)
	twice := Apply(once, opts, now)
	if !slices.Equal(ids(once), ids(twice)) {
		t.Fatalf("not idempotent: %v vs %v", ids(once), ids(twice))
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	tasks := fixture()
	before := ids(tasks)
	_ = Apply(tasks, Options{SortBy: SortDeadline, Order: OrderAsc}, now)
	if !slices.Equal(before, ids(tasks)) {
		t.Fatalf("input reordered: %v", ids(tasks))
	}
}

func TestPrioritySortIsTotalAndStable(t *testing.T) {
	desc := ids(Apply(fixture(), Options{SortBy: SortPriority, Order: OrderDesc}, now))
	// Equal priorities keep input order in both directions.
	if want := []string{"t2", "t4", "t3", "t5", "t1"}; !slices.Equal(desc, want) {
		t.Fatalf("desc got %v, want %v", desc, want)
	}
	asc := ids(Apply(fixture(), Options{SortBy: SortPriority, Order: OrderAsc}, now))
	if want := []string{"t1", "t3", "t5", "t2", "t4"}; !slices.Equal(asc, want) {
		t.Fatalf("asc got %v, want %v", asc, want)
	}
}

func TestDeadlineSort(t *testing.T) {
	got := ids(Apply(fixture(), Options{SortBy: SortDeadline, Order: OrderAsc}, now))
	if want := []string{"t3", "t1", "t2", "t5", "t4"}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestOptionsActiveAndToggleLabel(t *testing.T) {
	if Default().Active() || (Options{}).Active() {
		t.Fatal("defaults must not be active")
	}
	opts := Default().ToggleLabel("work")
	if !opts.Active() || !slices.Equal(opts.LabelIDs, []string{"work"}) {
		t.Fatalf("toggle on failed: %+v", opts)
	}
	opts = opts.ToggleLabel("work")
	if opts.Active() || len(opts.LabelIDs) != 0 {
		t.Fatalf("toggle off failed: %+v", opts)
	}
	if !(Options{Order: OrderAsc}).Active() {
		t.Fatal("ascending order must be active")
	}
}
