package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type bareEvent struct{}

func (bareEvent) EventType() string { return "test.bare" }

func TestAttributesFlattensPayload(t *testing.T) {
	attrs := Attributes(RoundCreated{Round: 3, VoteStart: 10, VoteEnd: 40})
	require.Equal(t, "3", attrs["round"])
	require.Equal(t, "10", attrs["vote_start"])
	require.Equal(t, "40", attrs["vote_end"])
}

func TestAttributesNilForBareEvents(t *testing.T) {
	require.Nil(t, Attributes(bareEvent{}))
}
