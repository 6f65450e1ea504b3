package model

import "time"

// User represents a registered user in the database.
type User struct {
	ID           int64
	PhoneNumber  string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// UserResponse represents user data safe for API responses (no password hash).
type UserResponse struct {
	ID          int64     `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuthResponse carries a signed token and the associated user.
type AuthResponse struct {
	Token string
	User  UserResponse
}

// Response converts a User to its API representation.
func (u *User) Response() UserResponse {
	return UserResponse{
		ID:          u.ID,
		PhoneNumber: u.PhoneNumber,
		Name:        u.Name,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
	}
}
