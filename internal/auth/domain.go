package auth

import "time"

// Admin represents an account able to sign in.
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	Name         string
	Email        string
	Phone        string
	Avatar       string
	Status       int
	CreatedAt    time.Time
}

// Active reports whether the account may sign in.
func (a *Admin) Active() bool {
	return a.Status == 1
}

// UserInfo is the signed-in admin as returned by login and me.
type UserInfo struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Avatar      string    `json:"avatar"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token
	User UserInfo `json:"user"`
}

// LoginInput carries sign-in credentials.
type LoginInput struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=64"`
}

// ProfileInput carries self-service profile changes.
type ProfileInput struct {
	Name   string `json:"name" validate:"required,max=50"`
	Email  string `json:"email" validate:"omitempty,email,max=100"`
	Phone  string `json:"phone" validate:"max=20"`
	Avatar string `json:"avatar" validate:"max=255"`
}

// PasswordChange carries a self-service password change.
type PasswordChange struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=64,nefield=OldPassword"`
}
