package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Steeve208/ReeskCapital-web-sub006/internal/models"
)

// ErrProfileNotFound represents missing profile rows.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository handles CRUD for the profiles table.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository returns repository instance.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	const query = `
		INSERT INTO profiles (email, display_name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		profile.Email,
		profile.DisplayName,
		profile.Role,
		profile.PasswordHash,
	).Scan(&profile.ID, &profile.CreatedAt)
}

// GetByEmail fetches a profile by email.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	const query = `
		SELECT id, email, display_name, role, password_hash, balance, created_at
		FROM profiles
		WHERE email = $1
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email)))
	return scanProfile(row)
}

// GetByID fetches a profile by id.
func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	const query = `
		SELECT id, email, display_name, role, password_hash, balance, created_at
		FROM profiles
		WHERE id = $1
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanProfile(row)
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Role, &p.PasswordHash, &p.Balance, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}
