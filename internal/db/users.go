package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"shelflife/internal/models"
)

const userColumns = `id, plex_id, username, email, thumb, is_admin, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.PlexID,
		&user.Username,
		&user.Email,
		&user.Thumb,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUser creates or updates a user keyed on their Plex account id.
// The admin flag is only promoted, never demoted, by a plain upsert; role
// changes go through SetUserAdmin.
func (d *DB) UpsertUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO plex_users (plex_id, username, email, thumb, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (plex_id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			thumb = EXCLUDED.thumb,
			is_admin = plex_users.is_admin OR EXCLUDED.is_admin,
			updated_at = NOW()
		RETURNING id, is_admin, created_at, updated_at
	`

	return d.Pool.QueryRow(ctx, query,
		user.PlexID,
		user.Username,
		user.Email,
		user.Thumb,
		user.IsAdmin,
	).Scan(&user.ID, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
}

// GetUserByPlexID retrieves a user by their Plex account id.
func (d *DB) GetUserByPlexID(ctx context.Context, plexID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM plex_users WHERE plex_id = $1`
	return scanUser(d.Pool.QueryRow(ctx, query, plexID))
}

// ListUsers retrieves all known users ordered by username.
func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM plex_users ORDER BY username ASC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.PlexID,
			&user.Username,
			&user.Email,
			&user.Thumb,
			&user.IsAdmin,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetUserAdmin updates the admin flag for a user.
func (d *DB) SetUserAdmin(ctx context.Context, plexID string, isAdmin bool) error {
	query := `UPDATE plex_users SET is_admin = $1, updated_at = NOW() WHERE plex_id = $2`
	result, err := d.Pool.Exec(ctx, query, isAdmin, plexID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CountEligibleUsers counts non-admin users, the denominator for round
// completion progress.
func (d *DB) CountEligibleUsers(ctx context.Context) (int, error) {
	var count int
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM plex_users WHERE NOT is_admin`).Scan(&count)
	return count, err
}
