package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Prathap331/GB-Backend/internal/domain/profile"
)

const (
	getProfileSQL = `SELECT id, COALESCE(full_name, ''), COALESCE(email, ''), COALESCE(gender, ''),
		COALESCE(phone_number, ''), COALESCE(address_line1, ''), COALESCE(address_line2, ''),
		COALESCE(city, ''), COALESCE(state, ''), COALESCE(postal_code, ''), COALESCE(country, ''),
		city_preference, voluntary_consent, fee_consent, account_status, updated_at
		FROM profiles WHERE id = $1`

	createProfileSQL = `INSERT INTO profiles (id, full_name, email, account_status)
		VALUES ($1, $2, $3, $4)`

	updateProfileSQL = `UPDATE profiles SET
		full_name = $2, email = $3, gender = $4, phone_number = $5,
		address_line1 = $6, address_line2 = $7, city = $8, state = $9,
		postal_code = $10, country = $11, city_preference = $12,
		voluntary_consent = $13, fee_consent = $14, updated_at = now()
		WHERE id = $1`
)

var _ profile.Repository = (*ProfileRepository)(nil)

// ProfileRepository implements profile.Repository backed by PostgreSQL.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a ProfileRepository that uses the given pool.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Get returns the profile for a user id, or profile.ErrNotFound.
func (r *ProfileRepository) Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	rows, err := r.pool.Query(ctx, getProfileSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting profile %s: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProfile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrNotFound
		}
		return nil, fmt.Errorf("getting profile %s: %w", id, err)
	}
	return &p, nil
}

// Create inserts the minimal profile row created on first access.
func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	_, err := r.pool.Exec(ctx, createProfileSQL, p.ID, p.FullName, p.Email, p.AccountStatus)
	if err != nil {
		return fmt.Errorf("creating profile %s: %w", p.ID, err)
	}
	return nil
}

// Update writes all user-editable fields.
func (r *ProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	tag, err := r.pool.Exec(ctx, updateProfileSQL,
		p.ID, p.FullName, p.Email, p.Gender, p.PhoneNumber,
		p.AddressLine1, p.AddressLine2, p.City, p.State,
		p.PostalCode, p.Country, p.CityPreference,
		p.VoluntaryConsent, p.FeeConsent,
	)
	if err != nil {
		return fmt.Errorf("updating profile %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.CollectableRow) (profile.Profile, error) {
	var p profile.Profile
	err := row.Scan(
		&p.ID, &p.FullName, &p.Email, &p.Gender,
		&p.PhoneNumber, &p.AddressLine1, &p.AddressLine2,
		&p.City, &p.State, &p.PostalCode, &p.Country,
		&p.CityPreference, &p.VoluntaryConsent, &p.FeeConsent,
		&p.AccountStatus, &p.UpdatedAt,
	)
	return p, err
}
