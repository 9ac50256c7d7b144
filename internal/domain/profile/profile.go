// Package profile holds the user delivery profile consulted before any order
// is priced or persisted.
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a profile does not exist yet.
var ErrNotFound = errors.New("profile not found")

// Profile is the user-owned delivery and contest-preference record.
type Profile struct {
	ID           uuid.UUID
	FullName     string
	Email        string
	Gender       string
	PhoneNumber  string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string

	CityPreference   string
	VoluntaryConsent bool
	FeeConsent       bool

	AccountStatus string
	UpdatedAt     time.Time
}

// Repository persists profiles. Rows are user-owned.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
}

// NewDefault builds the profile lazily created on first access for users who
// signed up through an external identity provider. The display name falls
// back to the local part of the email.
func NewDefault(id uuid.UUID, email string) *Profile {
	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	return &Profile{
		ID:            id,
		FullName:      name,
		Email:         email,
		AccountStatus: "active",
	}
}

// MissingForDelivery lists the required delivery fields that are empty.
// An empty result means the profile can receive orders.
func (p *Profile) MissingForDelivery() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", p.FullName},
		{"address", p.AddressLine1},
		{"city", p.City},
		{"postal code", p.PostalCode},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// DeliveryAddress formats the profile into the multi-line address block
// snapshotted onto orders.
func (p *Profile) DeliveryAddress() string {
	lines := []string{
		p.FullName,
		p.AddressLine1,
	}
	if p.AddressLine2 != "" {
		lines = append(lines, p.AddressLine2)
	}
	lines = append(lines,
		fmt.Sprintf("%s, %s %s", p.City, p.State, p.PostalCode),
		p.Country,
	)
	return strings.Join(lines, "\n")
}
