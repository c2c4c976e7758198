package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStaff(t *testing.T) {
	tests := []struct {
		name     string
		staff    string
		email    string
		password string
		role     StaffRole
		wantErr  bool
	}{
		{
			name:     "valid agent",
			staff:    "Sara",
			email:    "sara@example.com",
			password: "s3cret-pass",
			role:     RoleAgent,
		},
		{
			name:     "invalid email",
			staff:    "Sara",
			email:    "not-an-email",
			password: "s3cret-pass",
			role:     RoleAgent,
			wantErr:  true,
		},
		{
			name:     "short password",
			staff:    "Sara",
			email:    "sara@example.com",
			password: "short",
			role:     RoleAgent,
			wantErr:  true,
		},
		{
			name:     "unknown role",
			staff:    "Sara",
			email:    "sara@example.com",
			password: "s3cret-pass",
			role:     StaffRole("SUPERUSER"),
			wantErr:  true,
		},
		{
			name:     "empty name",
			staff:    "  ",
			email:    "sara@example.com",
			password: "s3cret-pass",
			role:     RoleAgent,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staff, err := NewStaff(tt.staff, tt.email, tt.password, tt.role, "UAE")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, staff.Active)
			assert.True(t, staff.VerifyPassword(tt.password))
			assert.False(t, staff.VerifyPassword("wrong-pass"))
		})
	}
}

func TestStaff_EmailNormalized(t *testing.T) {
	staff, err := NewStaff("Sara", "  Sara@Example.COM ", "s3cret-pass", RoleAgent, "UAE")
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", staff.Email)
}

func TestStaffRole_Capabilities(t *testing.T) {
	tests := []struct {
		role       StaffRole
		manages    bool
		holdsLeads bool
	}{
		{RoleAdmin, true, true},
		{RoleAgent, false, true},
		{RoleDelivery, false, false},
		{RoleViewer, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.manages, tt.role.CanManageStaff())
			assert.Equal(t, tt.holdsLeads, tt.role.CanHoldLeads())
		})
	}
}

func TestStaff_LoginLockout(t *testing.T) {
	staff, err := NewStaff("Sara", "sara@example.com", "s3cret-pass", RoleAgent, "UAE")
	require.NoError(t, err)

	assert.False(t, staff.RecordLoginFailure(3, time.Minute))
	assert.False(t, staff.RecordLoginFailure(3, time.Minute))
	assert.True(t, staff.RecordLoginFailure(3, time.Minute), "third failure locks")
	assert.True(t, staff.IsLocked())
	assert.False(t, staff.CanLogin())

	staff.RecordLoginSuccess()
	assert.False(t, staff.IsLocked())
	assert.Zero(t, staff.FailedAttempts)
	assert.NotNil(t, staff.LastLoginAt)
}

func TestStaff_Deactivate(t *testing.T) {
	staff, err := NewStaff("Sara", "sara@example.com", "s3cret-pass", RoleAgent, "UAE")
	require.NoError(t, err)

	staff.Deactivate()
	assert.False(t, staff.CanLogin())
	staff.Activate()
	assert.True(t, staff.CanLogin())
}

func TestStaff_ChangePassword(t *testing.T) {
	staff, err := NewStaff("Sara", "sara@example.com", "s3cret-pass", RoleAgent, "UAE")
	require.NoError(t, err)

	assert.Error(t, staff.ChangePassword("tiny"))
	require.NoError(t, staff.ChangePassword("another-pass"))
	assert.True(t, staff.VerifyPassword("another-pass"))
	assert.False(t, staff.VerifyPassword("s3cret-pass"))
}
