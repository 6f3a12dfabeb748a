package models

import "time"

// Role is the capability an authenticated caller acts under.
type Role string

const (
	RoleProvider Role = "provider"
	RoleClient   Role = "client"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleProvider || r == RoleClient || r == RoleAdmin
}

// Identity is the already-authenticated caller of an engine operation.
type Identity struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

func (i Identity) IsProvider() bool { return i.Role == RoleProvider }
func (i Identity) IsAdmin() bool    { return i.Role == RoleAdmin }

// User is a person account. Provider capability is an optional attached profile.
type User struct {
	ID        string           `bson:"id" json:"id"`
	FirstName string           `bson:"firstName" json:"firstName"`
	LastName  string           `bson:"lastName" json:"lastName"`
	Email     string           `bson:"email" json:"email,omitempty"`
	Role      Role             `bson:"role" json:"role"`
	Active    bool             `bson:"active" json:"active"`
	Provider  *ProviderProfile `bson:"provider,omitempty" json:"provider,omitempty"`
	Version   int64            `bson:"version" json:"version"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt time.Time        `bson:"updatedAt" json:"updatedAt,omitzero"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsActiveProvider reports whether the user currently acts as a provider.
func (u *User) IsActiveProvider() bool {
	return u.Role == RoleProvider && u.Provider != nil && u.Provider.Active
}

// Clone returns a deep copy including the provider profile and its reviews.
func (u *User) Clone() *User {
	c := *u
	if u.Provider != nil {
		p := *u.Provider
		if u.Provider.Subjects != nil {
			p.Subjects = append([]Subject(nil), u.Provider.Subjects...)
		}
		if u.Provider.Reviews != nil {
			p.Reviews = append([]Review(nil), u.Provider.Reviews...)
		}
		c.Provider = &p
	}
	return &c
}
