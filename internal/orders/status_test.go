package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPaid, StatusShipped, true},
		{StatusPending, StatusShipped, false},
		{StatusPaid, StatusPending, false},
		{StatusShipped, StatusPaid, false},
		{StatusShipped, StatusPending, false},
		{StatusPending, StatusPending, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestKnownStatus(t *testing.T) {
	assert.True(t, KnownStatus(StatusPending))
	assert.True(t, KnownStatus(StatusPaid))
	assert.True(t, KnownStatus(StatusShipped))
	assert.False(t, KnownStatus(Status("cancelled")))
	assert.False(t, KnownStatus(Status("")))
}
