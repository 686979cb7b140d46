package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
)

type fakeProfiles struct {
	saved []*identity.Profile
	err   error
}

func (f *fakeProfiles) Upsert(_ context.Context, p *identity.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, p)
	return nil
}

type fakeMembers struct {
	rows [][3]string
}

func (f *fakeMembers) AddMember(_ context.Context, partnerID, userID, role string) error {
	f.rows = append(f.rows, [3]string{partnerID, userID, role})
	return nil
}

const sampleFixture = `
profiles:
  - user_id: user-1
    email: anna@example.com
    display_name: Anna
  - user_id: user-2
    email: ben@example.com
partners:
  - id: partner-1
    owners: [user-1, user-2]
`

func TestParseAndApply(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleFixture))
	require.NoError(t, err)

	profiles := &fakeProfiles{}
	members := &fakeMembers{}
	stats, err := Apply(context.Background(), f, profiles, members, "owner")
	require.NoError(t, err)

	assert.Equal(t, Stats{Profiles: 2, Owners: 2}, stats)
	assert.Equal(t, "Anna", profiles.saved[0].DisplayName)
	assert.Equal(t, [3]string{"partner-1", "user-2", "owner"}, members.rows[1])
}

func TestParse_RejectsMissingIDs(t *testing.T) {
	_, err := Parse(strings.NewReader("profiles:\n  - email: a@b.c\n"))
	assert.ErrorContains(t, err, "user_id is required")

	_, err = Parse(strings.NewReader("partners:\n  - owners: [u]\n"))
	assert.ErrorContains(t, err, "id is required")
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("profile:\n  - user_id: u\n"))
	assert.Error(t, err)
}

func TestParse_EmptyFile(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Profiles)
}

func TestApply_StopsOnError(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleFixture))
	require.NoError(t, err)

	stats, err := Apply(context.Background(), f, &fakeProfiles{err: errors.New("db down")}, &fakeMembers{}, "owner")
	assert.Error(t, err)
	assert.Equal(t, 0, stats.Profiles)
}
