package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster(orders ...int) []TeamMember {
	members := make([]TeamMember, 0, len(orders))
	for _, order := range orders {
		members = append(members, TeamMember{Order: order, IsLeader: order == LeaderOrder})
	}
	return members
}

func TestCheckRoster(t *testing.T) {
	tests := []struct {
		name     string
		members  []TeamMember
		capacity int
		want     error
	}{
		{name: "empty", members: nil, capacity: 3},
		{name: "leader only", members: roster(0), capacity: 3},
		{name: "full", members: roster(0, 1, 2), capacity: 3},
		{name: "gap in slots", members: roster(0, 2), capacity: 3},
		{name: "over capacity", members: roster(0, 1, 2, 3), capacity: 3, want: ErrCapacityExceeded},
		{name: "no leader", members: roster(1, 2), capacity: 3, want: ErrMissingLeader},
		{name: "slot reused", members: roster(0, 1, 1), capacity: 3, want: ErrSlotTaken},
		{name: "slot out of range", members: roster(0, 3), capacity: 3, want: ErrValidation},
		{
			name:     "two leaders",
			members:  []TeamMember{{Order: 0, IsLeader: true}, {Order: 0, IsLeader: true}},
			capacity: 3,
			want:     ErrSlotTaken,
		},
		{
			name:     "leader outside slot zero",
			members:  []TeamMember{{Order: 1, IsLeader: true}},
			capacity: 3,
			want:     ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRoster(tt.members, tt.capacity)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNextFollowerOrder(t *testing.T) {
	order, ok := NextFollowerOrder(roster(0), 3)
	require.True(t, ok)
	assert.Equal(t, 1, order)

	order, ok = NextFollowerOrder(roster(0, 2), 3)
	require.True(t, ok)
	assert.Equal(t, 1, order)

	_, ok = NextFollowerOrder(roster(0, 1, 2), 3)
	assert.False(t, ok)

	_, ok = NextFollowerOrder(roster(0), 1)
	assert.False(t, ok)
}

func TestStatusForSize(t *testing.T) {
	assert.Equal(t, TeamStatusInvalid, StatusForSize(2, 3))
	assert.Equal(t, TeamStatusValid, StatusForSize(3, 3))
	assert.Equal(t, TeamStatusValid, StatusForSize(1, 1))
}

func TestNormalizeNames(t *testing.T) {
	name, err := NormalizeTeamName("  Alpha ")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", name)

	_, err = NormalizeTeamName("  ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NormalizeTeamName(strings.Repeat("я", MaxTeamNameLength+1))
	assert.ErrorIs(t, err, ErrValidation)

	name, err = NormalizeIngameName(strings.Repeat("я", MaxIngameNameLength))
	require.NoError(t, err)
	assert.Len(t, []rune(name), MaxIngameNameLength)

	_, err = NormalizeIngameName("")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTeamLeader(t *testing.T) {
	team := &Team{Members: roster(0, 1)}
	leader, ok := team.Leader()
	require.True(t, ok)
	assert.Equal(t, LeaderOrder, leader.Order)

	_, ok = (&Team{Members: roster(1)}).Leader()
	assert.False(t, ok)

	members := roster(2, 0, 1)
	SortMembers(members)
	assert.Equal(t, []int{0, 1, 2}, []int{members[0].Order, members[1].Order, members[2].Order})
}
