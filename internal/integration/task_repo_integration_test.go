package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskpad/internal/domain"
	"taskpad/internal/repository"
)

func applyMigrationsToPool(t *testing.T, dbp *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := dbp.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func recvSnapshot(t *testing.T, ch <-chan []domain.Task) []domain.Task {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestTaskRepositoryLiveFlow(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	dbp, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer dbp.Close()

	applyMigrationsToPool(t, dbp)

	owner := fmt.Sprintf("it-%d@example.com", time.Now().UnixNano())
	repo := repository.NewTaskRepository(dbp, repository.NewNotifier(nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := repo.Watch(ctx, owner)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if snap := recvSnapshot(t, ch); len(snap) != 0 {
		t.Fatalf("fresh partition not empty: %v", snap)
	}

	// create out of title order; the snapshot must come back sorted
	dur := int64(120)
	start := time.Now().UnixMilli()
	idB, err := repo.Create(ctx, owner, domain.Task{Title: "beta", Status: domain.StatusOpen, TimerSeconds: &dur, TimerStartedAt: &start})
	if err != nil {
		t.Fatalf("create beta: %v", err)
	}
	snap := recvSnapshot(t, ch)

	if _, err := repo.Create(ctx, owner, domain.Task{Title: "alpha", Status: domain.StatusOpen}); err != nil {
		t.Fatalf("create alpha: %v", err)
	}
	snap = recvSnapshot(t, ch)
	if len(snap) != 2 || snap[0].Title != "alpha" || snap[1].Title != "beta" {
		t.Fatalf("snapshot not ordered by title: %v", snap)
	}
	if snap[1].TimerSeconds == nil || *snap[1].TimerSeconds != 120 || snap[1].TimerStartedAt == nil {
		t.Fatalf("timer fields not persisted: %+v", snap[1])
	}
	if snap[0].TimerSeconds != nil || snap[0].TimerStartedAt != nil {
		t.Fatalf("absent timer fields must stay absent: %+v", snap[0])
	}

	// a duration edit keeps the original start instant
	newDur := int64(600)
	if err := repo.Update(ctx, owner, idB, domain.TaskPatch{TimerSeconds: &newDur}); err != nil {
		t.Fatalf("update duration: %v", err)
	}
	snap = recvSnapshot(t, ch)
	if *snap[1].TimerSeconds != 600 {
		t.Fatalf("duration not updated: %+v", snap[1])
	}
	if *snap[1].TimerStartedAt != start {
		t.Fatalf("start instant reset on edit: got %d want %d", *snap[1].TimerStartedAt, start)
	}

	// status patch
	complete := domain.StatusComplete
	if err := repo.Update(ctx, owner, idB, domain.TaskPatch{Status: &complete}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	snap = recvSnapshot(t, ch)
	if snap[1].Status != domain.StatusComplete {
		t.Fatalf("status not updated: %+v", snap[1])
	}

	// clearing the timer drops both fields
	if err := repo.Update(ctx, owner, idB, domain.TaskPatch{ClearTimer: true}); err != nil {
		t.Fatalf("clear timer: %v", err)
	}
	snap = recvSnapshot(t, ch)
	if snap[1].TimerSeconds != nil || snap[1].TimerStartedAt != nil {
		t.Fatalf("timer not cleared: %+v", snap[1])
	}

	// patching an unknown id is a silent no-op and pushes nothing
	if err := repo.Update(ctx, owner, "00000000-0000-0000-0000-000000000000", domain.TaskPatch{Status: &complete}); err != nil {
		t.Fatalf("stale update: %v", err)
	}

	if err := repo.Delete(ctx, owner, idB); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap = recvSnapshot(t, ch)
	if len(snap) != 1 || snap[0].Title != "alpha" {
		t.Fatalf("delete not reflected: %v", snap)
	}

	// another owner's partition is untouched
	other, err := repo.List(ctx, "someone-else@example.com")
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	for _, x := range other {
		if x.Title == "alpha" {
			t.Fatalf("task leaked across partitions: %v", x)
		}
	}
}
