package models

import "time"

// User is an account principal. Tokens embed its identity and role names;
// the password is stored only as a bcrypt hash.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:100;uniqueIndex;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Roles        []Role `gorm:"many2many:user_roles"`
	CreatedAt    time.Time
}

func (u *User) TableName() string {
	return "users"
}

func (u User) PrimaryKey() uint {
	return u.ID
}

// RoleNames returns the names of the user's roles.
func (u *User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}

// Role is a named authorization group.
type Role struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:50;uniqueIndex;not null"`
}

func (r *Role) TableName() string {
	return "roles"
}

func (r Role) PrimaryKey() uint {
	return r.ID
}
