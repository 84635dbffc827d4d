package pipeline

import (
	"reflect"
	"testing"

	"taskpad/internal/domain"
)

func task(title, desc string, status domain.Status) domain.Task {
	return domain.Task{ID: title, Title: title, Description: desc, Status: status}
}

func sample() []domain.Task {
	return []domain.Task{
		task("buy milk", "from the corner shop", domain.StatusOpen),
		task("file taxes", "", domain.StatusComplete),
		task("call mom", "weekly call", domain.StatusOpen),
		task("Milk the deadline", "urgent", domain.StatusComplete),
	}
}

func TestParseFilterMode(t *testing.T) {
	for _, s := range []string{"", "all", "open", "complete"} {
		if _, err := ParseFilterMode(s); err != nil {
			t.Fatalf("ParseFilterMode(%q): %v", s, err)
		}
	}
	if _, err := ParseFilterMode("done"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestApplyStatusFilter(t *testing.T) {
	in := sample()

	all := ApplyStatusFilter(in, FilterAll)
	if !reflect.DeepEqual(all, in) {
		t.Fatal("FilterAll must return the input unchanged")
	}

	open := ApplyStatusFilter(in, FilterOpen)
	if len(open) != 2 || open[0].Title != "buy milk" || open[1].Title != "call mom" {
		t.Fatalf("FilterOpen: got %v", open)
	}
	for _, x := range open {
		if x.Status != domain.StatusOpen {
			t.Fatalf("FilterOpen leaked status %q", x.Status)
		}
	}

	complete := ApplyStatusFilter(in, FilterComplete)
	if len(complete) != 2 || complete[0].Title != "file taxes" || complete[1].Title != "Milk the deadline" {
		t.Fatalf("FilterComplete: got %v", complete)
	}
}

func TestApplySearch(t *testing.T) {
	in := sample()

	for _, q := range []string{"", "   ", "\t"} {
		if got := ApplySearch(in, q); !reflect.DeepEqual(got, in) {
			t.Fatalf("blank query %q must return input unchanged", q)
		}
	}

	// case-insensitive title match, order preserved
	got := ApplySearch(in, "MILK")
	if len(got) != 2 || got[0].Title != "buy milk" || got[1].Title != "Milk the deadline" {
		t.Fatalf("title search: got %v", got)
	}

	// description match
	got = ApplySearch(in, "corner")
	if len(got) != 1 || got[0].Title != "buy milk" {
		t.Fatalf("description search: got %v", got)
	}

	// a task with no description never matches on description
	got = ApplySearch(in, "taxes")
	if len(got) != 1 || got[0].Title != "file taxes" {
		t.Fatalf("expected title-only match for empty description, got %v", got)
	}
	if got := ApplySearch([]domain.Task{task("x", "", domain.StatusOpen)}, "anything"); len(got) != 0 {
		t.Fatalf("empty description matched: %v", got)
	}
}

func TestSearchReturnsSubset(t *testing.T) {
	in := sample()
	got := ApplySearch(in, "call")
	seen := make(map[string]bool)
	for _, x := range in {
		seen[x.ID] = true
	}
	for _, x := range got {
		if !seen[x.ID] {
			t.Fatalf("search invented task %q", x.ID)
		}
	}
}

// Filter runs before search: a complete task whose title matches the query
// must not surface while the open filter is active.
func TestCompositionOrderFilterThenSearch(t *testing.T) {
	in := []domain.Task{
		task("ship release", "", domain.StatusComplete),
		task("draft notes", "", domain.StatusOpen),
	}

	got := Visible(in, FilterOpen, "ship")
	if len(got) != 0 {
		t.Fatalf("complete task leaked through open filter: %v", got)
	}

	// the same query finds it once the filter admits complete tasks
	got = Visible(in, FilterComplete, "ship")
	if len(got) != 1 || got[0].Title != "ship release" {
		t.Fatalf("expected the complete task, got %v", got)
	}
}

func TestPipelineDoesNotMutateInput(t *testing.T) {
	in := sample()
	snapshot := make([]domain.Task, len(in))
	copy(snapshot, in)

	_ = ApplyStatusFilter(in, FilterOpen)
	_ = ApplySearch(in, "milk")
	_ = Visible(in, FilterComplete, "deadline")

	if !reflect.DeepEqual(in, snapshot) {
		t.Fatal("pipeline mutated its input")
	}
}
