package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskpad/internal/domain"
	"taskpad/internal/logger"
)

// TaskRepository persists tasks partitioned by owner email and implements
// the live-query contract: every successful write fires the notifier so
// each watcher reloads and pushes the full ordered snapshot.
type TaskRepository struct {
	db       *pgxpool.Pool
	notifier *Notifier
}

func NewTaskRepository(db *pgxpool.Pool, notifier *Notifier) *TaskRepository {
	return &TaskRepository{db: db, notifier: notifier}
}

// List returns all of owner's tasks ordered by title ascending. The sort
// order is part of the contract and is reproduced everywhere snapshots
// are built.
func (r *TaskRepository) List(ctx context.Context, owner string) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, COALESCE(description, ''), status, timer_seconds, timer_started_at_ms
		 FROM tasks
		 WHERE owner_email = $1
		 ORDER BY title ASC`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.TimerSeconds, &t.TimerStartedAt); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// Watch pushes a full replacement snapshot for owner on subscribe and
// after every change, until ctx is cancelled. Consecutive changes may be
// coalesced into a single push.
func (r *TaskRepository) Watch(ctx context.Context, owner string) (<-chan []domain.Task, error) {
	sub := r.notifier.Subscribe(owner)
	ch := make(chan []domain.Task, 1)

	push := func() bool {
		snap, err := r.List(ctx, owner)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("snapshot reload failed", "owner", owner, "error", err)
			}
			return true
		}
		select {
		case ch <- snap:
		case <-ctx.Done():
			return false
		}
		return true
	}

	go func() {
		defer sub.Cancel()
		defer close(ch)

		if !push() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.C:
				if !push() {
					return
				}
			}
		}
	}()
	return ch, nil
}

func (r *TaskRepository) Create(ctx context.Context, owner string, t domain.Task) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (id, owner_email, title, description, status, timer_seconds, timer_started_at_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, owner, t.Title, t.Description, t.Status, t.TimerSeconds, t.TimerStartedAt,
	)
	if err != nil {
		return "", err
	}
	r.notifier.Notify(ctx, owner)
	return id, nil
}

// Update applies a partial patch. Unknown ids are a no-op, not an error.
func (r *TaskRepository) Update(ctx context.Context, owner, id string, patch domain.TaskPatch) error {
	if patch.Empty() {
		return nil
	}

	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return errors.New("invalid task status")
		}
		add("status", *patch.Status)
	}
	if patch.ClearTimer {
		sets = append(sets, "timer_seconds = NULL", "timer_started_at_ms = NULL")
	} else if patch.TimerSeconds != nil {
		// duration edits keep the original start instant
		add("timer_seconds", *patch.TimerSeconds)
	}

	args = append(args, id, owner)
	q := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND owner_email = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		r.notifier.Notify(ctx, owner)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, owner, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_email = $2`, id, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		r.notifier.Notify(ctx, owner)
	}
	return nil
}
