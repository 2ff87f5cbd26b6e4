package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegistrationStatus(t *testing.T) {
	for _, raw := range []string{"PENDING", "APPROVED", "REJECTED"} {
		status, err := ParseRegistrationStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, RegistrationStatus(raw), status)
	}

	for _, raw := range []string{"", "approved", "DELETED", " PENDING"} {
		_, err := ParseRegistrationStatus(raw)
		assert.Error(t, err, raw)
	}
}

func TestRegistrationStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to RegistrationStatus
		allowed  bool
	}{
		{RegistrationStatusPending, RegistrationStatusApproved, true},
		{RegistrationStatusPending, RegistrationStatusRejected, true},
		{RegistrationStatusPending, RegistrationStatusPending, false},
		{RegistrationStatusApproved, RegistrationStatusRejected, false},
		{RegistrationStatusRejected, RegistrationStatusApproved, false},
		{RegistrationStatusRejected, RegistrationStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.False(t, RegistrationStatusPending.IsTerminal())
	assert.True(t, RegistrationStatusApproved.IsTerminal())
	assert.True(t, RegistrationStatusRejected.IsTerminal())
}
