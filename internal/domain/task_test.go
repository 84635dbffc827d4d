package domain

import "testing"

func TestStatus(t *testing.T) {
	if !StatusOpen.Valid() || !StatusComplete.Valid() {
		t.Fatal("enum values must be valid")
	}
	if Status("done").Valid() {
		t.Fatal("unknown status accepted")
	}
	if StatusOpen.Opposite() != StatusComplete || StatusComplete.Opposite() != StatusOpen {
		t.Fatal("opposite is not an involution on the enum")
	}
}

func TestTaskValidate(t *testing.T) {
	if err := (Task{Title: "ok", Status: StatusOpen}).Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	for _, title := range []string{"", "   ", "\t\n"} {
		if err := (Task{Title: title, Status: StatusOpen}).Validate(); err != ErrEmptyTitle {
			t.Fatalf("title %q: got %v, want ErrEmptyTitle", title, err)
		}
	}

	if err := (Task{Title: "x", Status: "doing"}).Validate(); err == nil {
		t.Fatal("invalid status accepted")
	}

	neg := int64(-1)
	if err := (Task{Title: "x", Status: StatusOpen, TimerSeconds: &neg}).Validate(); err == nil {
		t.Fatal("negative duration accepted")
	}
}

func TestPatchEmpty(t *testing.T) {
	if !(TaskPatch{}).Empty() {
		t.Fatal("zero patch should be empty")
	}
	s := StatusComplete
	if (TaskPatch{Status: &s}).Empty() {
		t.Fatal("status patch should not be empty")
	}
	if (TaskPatch{ClearTimer: true}).Empty() {
		t.Fatal("clear-timer patch should not be empty")
	}
}
