package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// StaffRole is the closed set of roles a staff member can hold. Code that
// branches on roles switches over this type exhaustively; there are no raw
// role strings anywhere else in the system.
type StaffRole string

const (
	RoleAdmin    StaffRole = "ADMIN"
	RoleAgent    StaffRole = "AGENT"
	RoleDelivery StaffRole = "DELIVERY"
	RoleViewer   StaffRole = "VIEWER"
)

// IsValid checks if the role is one of the known roles
func (r StaffRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleDelivery, RoleViewer:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r StaffRole) String() string {
	return string(r)
}

// CanManageStaff reports whether the role may administer staff and settings
func (r StaffRole) CanManageStaff() bool {
	return r == RoleAdmin
}

// CanHoldLeads reports whether leads can be assigned to this role
func (r StaffRole) CanHoldLeads() bool {
	switch r {
	case RoleAdmin, RoleAgent:
		return true
	case RoleDelivery, RoleViewer:
		return false
	}
	return false
}

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Staff represents an internal user of the system. Email is the login key.
type Staff struct {
	shared.BaseAggregateRoot
	Name           string    `gorm:"not null"`
	Email          string    `gorm:"not null;uniqueIndex"`
	Role           StaffRole `gorm:"not null"`
	Country        string
	Active         bool `gorm:"not null;default:true"`
	PasswordHash   string
	LastLoginAt    *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
}

// NewStaff creates a staff member with a hashed password
func NewStaff(name, email, password string, role StaffRole, country string) (*Staff, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Staff name is required")
	}
	if !emailRegex.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown staff role: "+string(role))
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &Staff{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Role:              role,
		Country:           country,
		Active:            true,
		PasswordHash:      hash,
	}, nil
}

// VerifyPassword checks the password against the stored hash
func (s *Staff) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password hash
func (s *Staff) ChangePassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	s.PasswordHash = hash
	s.Touch()
	s.IncrementVersion()
	return nil
}

// IsLocked reports whether the account is temporarily locked
func (s *Staff) IsLocked() bool {
	return s.LockedUntil != nil && time.Now().Before(*s.LockedUntil)
}

// CanLogin reports whether the account may authenticate right now
func (s *Staff) CanLogin() bool {
	return s.Active && !s.IsLocked()
}

// RecordLoginSuccess clears failure counters and stamps the login time
func (s *Staff) RecordLoginSuccess() {
	now := time.Now()
	s.LastLoginAt = &now
	s.FailedAttempts = 0
	s.LockedUntil = nil
	s.Touch()
}

// RecordLoginFailure increments the failure counter and locks the account
// once maxAttempts is reached. Returns true when the account got locked.
func (s *Staff) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	s.FailedAttempts++
	s.Touch()

	if s.FailedAttempts >= maxAttempts {
		until := time.Now().Add(lockDuration)
		s.LockedUntil = &until
		return true
	}
	return false
}

// UpdateProfile updates the staff member's descriptive fields
func (s *Staff) UpdateProfile(name, country string, role StaffRole) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Staff name is required")
	}
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown staff role: "+string(role))
	}

	s.Name = name
	s.Country = country
	s.Role = role
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Activate enables the account
func (s *Staff) Activate() {
	s.Active = true
	s.Touch()
	s.IncrementVersion()
}

// Deactivate disables the account; deactivated staff cannot log in and are
// skipped by lead assignment.
func (s *Staff) Deactivate() {
	s.Active = false
	s.Touch()
	s.IncrementVersion()
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// TableName specifies the database table name
func (Staff) TableName() string {
	return "staff"
}
