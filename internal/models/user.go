package models

// Position is the role of a user. It decides which commands the front end
// offers after login.
type Position string

const (
	PositionDriver     Position = "driver"
	PositionHelper     Position = "helper"
	PositionDispatcher Position = "dispatcher"
	PositionAdmin      Position = "admin"
)

func (p Position) Valid() bool {
	switch p {
	case PositionDriver, PositionHelper, PositionDispatcher, PositionAdmin:
		return true
	}
	return false
}

// CanCapture reports whether the position records trips and fuel.
func (p Position) CanCapture() bool {
	return p == PositionDriver || p == PositionHelper
}

// CanManageUsers reports whether the position may list and delete users.
func (p Position) CanManageUsers() bool {
	return p == PositionAdmin || p == PositionDispatcher
}

// User is a local account. Credentials are an argon2id hash and its salt.
type User struct {
	ID           int64
	Username     string
	FullName     string
	Position     Position
	PasswordHash []byte
	Salt         []byte
	CreatedAt    string
	UpdatedAt    string
}
