package model

import "time"

// User represents a registered account as stored in the `users` table.
// Password holds the bcrypt hash and is never serialised.
//
// Fields:
//
//	ID         – primary key identifier.
//	Username   – unique login name.
//	Email      – unique address the verification link is sent to.
//	Password   – bcrypt hash of the password.
//	IsVerified – set once the verification link has been followed.
//	JoinDate   – registration timestamp (UTC).
type User struct {
	ID         uint64    `json:"id"`          // users.id
	Username   string    `json:"username"`    // users.username
	Email      string    `json:"email"`       // users.email
	Password   string    `json:"-"`           // users.password
	IsVerified bool      `json:"is_verified"` // users.is_verified
	JoinDate   time.Time `json:"join_date"`   // users.join_date
}

// JoinDateLabel formats the join date the way the API presents it, e.g. "Jan 02 2006".
func (u *User) JoinDateLabel() string {
	return u.JoinDate.Format("Jan 02 2006")
}
