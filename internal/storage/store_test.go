package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusApproved, StatusSold, true},
		{StatusPending, StatusSold, false},
		{StatusPending, StatusPending, false},
		{StatusApproved, StatusPending, false},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusPending, false},
		{StatusSold, StatusApproved, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, ValidTransition(tt.from, tt.to))
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Sarah Mekonnen", (&User{FirstName: "Sarah", LastName: "Mekonnen"}).DisplayName())
	assert.Equal(t, "Sarah", (&User{FirstName: "Sarah"}).DisplayName())
	assert.Equal(t, "sarah_m", (&User{Username: "sarah_m"}).DisplayName())
}
