package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	appCtx "github.com/baechuer/real-time-ressys/services/listing-service/internal/pkg/context"
)

// Repo is the local record store: events and the role lookup.
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, listEventsSQL)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := []domain.Event{}
	for rows.Next() {
		var e domain.Event
		var img sql.NullString
		if err := rows.Scan(&e.ID, &e.Description, &e.Location, &e.EventType, &e.EventDate, &img); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if img.Valid {
			e.ImageURL = domain.StringPtr(img.String)
		}
		e.EventDate = wallClock(e.EventDate)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

// RoleOf expects at most one row. No row is not_found; more than one is an error.
func (r *Repo) RoleOf(ctx context.Context, userID string) (string, error) {
	rows, err := r.db.QueryContext(ctx, roleOfSQL, userID)
	if err != nil {
		return "", fmt.Errorf("role lookup: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return "", fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("role lookup: %w", err)
	}

	switch len(roles) {
	case 0:
		return "", domain.ErrNotFound("role")
	case 1:
		return roles[0], nil
	default:
		return "", fmt.Errorf("role lookup: %d rows for user %s", len(roles), userID)
	}
}

// UpdateEvent writes every editable column in one statement on behalf of the actor in ctx.
func (r *Repo) UpdateEvent(ctx context.Context, id string, p domain.EventPatch) error {
	actor := appCtx.GetActor(ctx)
	if actor.UserID == "" {
		return domain.ErrUpdateForbidden()
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, updateEventSQL,
			id, p.Description, p.Location, p.EventType,
			domain.FormatTimestamp(p.EventDate), nullString(p.ImageURL),
			actor.UserID,
		)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if n == 1 {
			return nil
		}

		var exists bool
		if err := tx.QueryRowContext(ctx, eventExistsSQL, id).Scan(&exists); err != nil {
			return fmt.Errorf("event exists: %w", err)
		}
		if !exists {
			return domain.ErrNotFound("event")
		}
		return domain.ErrUpdateForbidden()
	})
}

// UpsertEvent is used by fixture seeding only; it bypasses the admin guard.
func (r *Repo) UpsertEvent(ctx context.Context, e domain.Event) error {
	_, err := r.db.ExecContext(ctx, upsertEventSQL,
		e.ID, e.Description, e.Location, e.EventType,
		domain.FormatTimestamp(e.EventDate), nullString(e.ImageURL),
	)
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", e.ID, err)
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// wallClock drops whatever zone the driver attached to a TIMESTAMP column.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
