package database

import (
	"context"
	"fmt"
	"strings"

	"campushub/internal/models"
)

const userColumns = `id, email, display_name, COALESCE(username, ''), password_hash,
	avatar_url, banner_url, bio, links, skills, is_admin, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.Username, &user.PasswordHash,
		&user.AvatarURL, &user.BannerURL, &user.Bio, &user.Links, &user.Skills,
		&user.IsAdmin, &user.CreatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user, nil
}

func (db *PostgresDB) CreateUser(ctx context.Context, email, displayName, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (email, display_name, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING ` + userColumns

	user, err := scanUser(db.pool.QueryRow(ctx, query, email, displayName, passwordHash))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(db.pool.QueryRow(ctx, query, email))
}

func (db *PostgresDB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.pool.QueryRow(ctx, query, id))
}

// UpdateProfile applies only the fields present in the request. The username
// column is written through NULLIF-style guarding in the service layer; here
// COALESCE keeps absent fields unchanged.
func (db *PostgresDB) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	query := `
		UPDATE users SET
			display_name = COALESCE($2, display_name),
			username     = COALESCE($3, username),
			avatar_url   = COALESCE($4, avatar_url),
			banner_url   = COALESCE($5, banner_url),
			bio          = COALESCE($6, bio),
			links        = COALESCE($7, links),
			skills       = COALESCE($8, skills)
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(db.pool.QueryRow(ctx, query, userID,
		req.DisplayName, req.Username, req.AvatarURL, req.BannerURL, req.Bio,
		req.Links, req.Skills))
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// escapeLike neutralizes LIKE metacharacters so the bound query stays a
// literal prefix. Without it a query of "%" matches the whole directory.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SearchUsersPrefix matches display name or username prefixes using the
// pattern-ops indexes. Prefix matches on either field rank first, ties break
// on display name.
func (db *PostgresDB) SearchUsersPrefix(ctx context.Context, query string, excludeID, limit int) ([]*models.User, error) {
	sql := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id <> $1
		  AND (lower(display_name) LIKE lower($2) || '%' ESCAPE '\'
		       OR lower(COALESCE(username, '')) LIKE lower($2) || '%' ESCAPE '\')
		ORDER BY lower(display_name), id
		LIMIT $3`

	rows, err := db.pool.Query(ctx, sql, excludeID, escapeLike(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ScanUsers returns a bounded slice of the directory for the substring
// fallback; matching happens in the service.
func (db *PostgresDB) ScanUsers(ctx context.Context, excludeID, limit int) ([]*models.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE id <> $1 ORDER BY id LIMIT $2`

	rows, err := db.pool.Query(ctx, sql, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
