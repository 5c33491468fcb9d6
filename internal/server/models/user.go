package models

import "time"

// User is an identity record. PasswordHash never leaves the service layer;
// use Public before handing a user to a transport.
type User struct {
	ID           string    `db:"id"`
	UserName     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Public returns a copy without the password hash.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	return &User{ID: u.ID, UserName: u.UserName, CreatedAt: u.CreatedAt}
}
