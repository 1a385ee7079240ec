package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"shelflife/internal/models"
)

const roundColumns = `id, name, status, started_at, closed_at, end_date, created_by, created_at, updated_at`

func scanRound(row pgx.Row) (*models.ReviewRound, error) {
	var round models.ReviewRound
	err := row.Scan(
		&round.ID,
		&round.Name,
		&round.Status,
		&round.StartedAt,
		&round.ClosedAt,
		&round.EndDate,
		&round.CreatedBy,
		&round.CreatedAt,
		&round.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoundNotFound
	}
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// CreateRound inserts a new active round. The partial unique index on
// status='active' makes this safe under concurrent creation: exactly one of
// N simultaneous creators succeeds, the rest get ErrActiveRoundExists.
func (d *DB) CreateRound(ctx context.Context, round *models.ReviewRound) error {
	query := `
		INSERT INTO review_rounds (name, status, end_date, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, started_at, created_at, updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		round.Name,
		models.RoundActive,
		round.EndDate,
		round.CreatedBy,
	).Scan(&round.ID, &round.StartedAt, &round.CreatedAt, &round.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrActiveRoundExists
		}
		return err
	}

	round.Status = models.RoundActive
	return nil
}

// GetRoundByID retrieves a round by id.
func (d *DB) GetRoundByID(ctx context.Context, id uuid.UUID) (*models.ReviewRound, error) {
	query := `SELECT ` + roundColumns + ` FROM review_rounds WHERE id = $1`
	return scanRound(d.Pool.QueryRow(ctx, query, id))
}

// GetActiveRound retrieves the single active round, if any.
func (d *DB) GetActiveRound(ctx context.Context) (*models.ReviewRound, error) {
	query := `SELECT ` + roundColumns + ` FROM review_rounds WHERE status = $1`
	round, err := scanRound(d.Pool.QueryRow(ctx, query, models.RoundActive))
	if errors.Is(err, ErrRoundNotFound) {
		return nil, ErrNoActiveRound
	}
	return round, err
}

// ListRounds retrieves all rounds, newest first.
func (d *DB) ListRounds(ctx context.Context) ([]models.ReviewRound, error) {
	query := `SELECT ` + roundColumns + ` FROM review_rounds ORDER BY started_at DESC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []models.ReviewRound
	for rows.Next() {
		var round models.ReviewRound
		if err := rows.Scan(
			&round.ID,
			&round.Name,
			&round.Status,
			&round.StartedAt,
			&round.ClosedAt,
			&round.EndDate,
			&round.CreatedBy,
			&round.CreatedAt,
			&round.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

// UpdateRound edits a round's name and/or end date. Closed rounds stay
// editable for corrections. Nil fields are left untouched; the handler
// rejects updates where both are nil.
func (d *DB) UpdateRound(ctx context.Context, id uuid.UUID, name *string, endDate *time.Time, clearEndDate bool) (*models.ReviewRound, error) {
	query := `
		UPDATE review_rounds
		SET name = COALESCE($1, name),
			end_date = CASE WHEN $2 THEN NULL ELSE COALESCE($3, end_date) END,
			updated_at = NOW()
		WHERE id = $4
		RETURNING ` + roundColumns + `
	`
	return scanRound(d.Pool.QueryRow(ctx, query, name, clearEndDate, endDate, id))
}

// CloseRound transitions an active round to closed and stamps the close
// time. Closing a closed or missing round is not-found; a round closed
// twice never gets a second close timestamp.
func (d *DB) CloseRound(ctx context.Context, id uuid.UUID) (*models.ReviewRound, error) {
	query := `
		UPDATE review_rounds
		SET status = $1, closed_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING ` + roundColumns + `
	`
	return scanRound(d.Pool.QueryRow(ctx, query, models.RoundClosed, id, models.RoundActive))
}
