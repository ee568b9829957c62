package models

type User struct {
	ID             uint    `gorm:"primaryKey;autoIncrement"                          json:"id"`
	Username       string  `gorm:"uniqueIndex;not null"                              json:"username"`
	Email          string  `gorm:"uniqueIndex;not null"                              json:"email"`
	FullName       *string `gorm:"column:full_name"                                  json:"full_name"`
	HashedPassword string  `gorm:"not null"                                          json:"-"`
	Disabled       bool    `gorm:"not null;default:false"                            json:"disabled"`
	Scopes         []Scope `gorm:"many2many:user_scopes;constraint:OnDelete:CASCADE" json:"scopes"`
}

type Scope struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null"     json:"name"`
}

// UserScope is the join row behind User.Scopes. The composite key makes a
// repeated assignment a constraint violation.
type UserScope struct {
	UserID  uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ScopeID uint `gorm:"primaryKey;autoIncrement:false" json:"scope_id"`
}

// PublicUser is what leaves the service about a user.
type PublicUser struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	FullName *string `json:"full_name"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, FullName: u.FullName}
}

// ScopeNames returns the names of the scopes currently loaded on u.
func (u *User) ScopeNames() map[string]struct{} {
	names := make(map[string]struct{}, len(u.Scopes))
	for _, s := range u.Scopes {
		names[s.Name] = struct{}{}
	}
	return names
}

type NewUser struct {
	Username string  `json:"username" form:"username"`
	Email    string  `json:"email"    form:"email"`
	FullName *string `json:"full_name" form:"full_name"`
	Password string  `json:"password" form:"password"`
}
