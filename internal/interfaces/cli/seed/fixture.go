package seed

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
)

// Fixture is the seed file layout.
//
//	profiles:
//	  - user_id: user-1
//	    email: anna@example.com
//	    display_name: Anna
//	partners:
//	  - id: partner-1
//	    owners: [user-1]
type Fixture struct {
	Profiles []ProfileFixture `yaml:"profiles"`
	Partners []PartnerFixture `yaml:"partners"`
}

type ProfileFixture struct {
	UserID      string `yaml:"user_id"`
	Email       string `yaml:"email"`
	DisplayName string `yaml:"display_name"`
}

type PartnerFixture struct {
	ID     string   `yaml:"id"`
	Owners []string `yaml:"owners"`
}

type profileWriter interface {
	Upsert(ctx context.Context, p *identity.Profile) error
}

type memberWriter interface {
	AddMember(ctx context.Context, partnerID, userID, role string) error
}

// Parse decodes a fixture and rejects entries without ids.
func Parse(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	for i, p := range f.Profiles {
		if p.UserID == "" {
			return nil, fmt.Errorf("profile %d: user_id is required", i)
		}
	}
	for i, p := range f.Partners {
		if p.ID == "" {
			return nil, fmt.Errorf("partner %d: id is required", i)
		}
	}
	return &f, nil
}

// Stats counts the rows written by Apply.
type Stats struct {
	Profiles int
	Owners   int
}

// Apply upserts the fixture. Re-running it is harmless.
func Apply(ctx context.Context, f *Fixture, profiles profileWriter, members memberWriter, ownerRole string) (Stats, error) {
	var stats Stats
	for _, p := range f.Profiles {
		if err := profiles.Upsert(ctx, &identity.Profile{
			UserID:      p.UserID,
			Email:       p.Email,
			DisplayName: p.DisplayName,
		}); err != nil {
			return stats, err
		}
		stats.Profiles++
	}
	for _, partner := range f.Partners {
		for _, owner := range partner.Owners {
			if err := members.AddMember(ctx, partner.ID, owner, ownerRole); err != nil {
				return stats, err
			}
			stats.Owners++
		}
	}
	return stats, nil
}
