package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallerVariants(t *testing.T) {
	var zero Caller
	assert.Equal(t, KindAnonymous, zero.Kind())
	assert.False(t, zero.IsAuthenticated())

	c := Consumer("u1")
	assert.Equal(t, KindConsumer, c.Kind())
	assert.True(t, c.IsAuthenticated())
	assert.False(t, c.OwnsPartner("p1"))

	p := PartnerOwner("u2", []string{"p2", "p1", "p2"})
	assert.Equal(t, KindPartnerOwner, p.Kind())
	assert.Equal(t, []string{"p1", "p2"}, p.OwnedPartnerIDs())
	assert.True(t, p.OwnsPartner("p1"))
	assert.False(t, p.OwnsPartner("p3"))

	assert.Equal(t, KindConsumer, PartnerOwner("u3", nil).Kind())

	a := Admin("root")
	assert.True(t, a.IsAdmin())
	assert.Equal(t, "admin", a.Role())
}

func TestOwnedPartnerIDsIsACopy(t *testing.T) {
	p := PartnerOwner("u", []string{"p1"})
	ids := p.OwnedPartnerIDs()
	ids[0] = "hijack"
	assert.True(t, p.OwnsPartner("p1"))
	assert.False(t, p.OwnsPartner("hijack"))
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithCaller(context.Background(), Consumer("u1"))
	assert.Equal(t, "u1", FromContext(ctx).UserID())
	assert.Equal(t, KindAnonymous, FromContext(context.Background()).Kind())
}
