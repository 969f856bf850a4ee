package domain

import "time"

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username" gorm:"uniqueIndex;size:150;notNull"`
	Email    string `json:"email" gorm:"uniqueIndex;notNull"`

	// Password is only ever set on incoming register/login data,
	// it is never stored. PasswordHash is what goes into the database.
	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-"`

	// Remember is the raw session token living in the user's cookie.
	// Only its HMAC hash is stored.
	Remember     string `json:"-" gorm:"-"`
	RememberHash string `json:"-" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserService is a set of methods to manipulate and work with the User model.
// It doubles as the backend of the session auth system.
type UserService interface {
	ByID(id int) (*User, error)
	ByUsername(username string) (*User, error)
	ByRemember(token string) (*User, error)
	Authenticate(email, password string) (*User, error)
	MakeRememberToken() (string, error)
	Create(user *User) error
	Update(user *User) error
}
