package domain

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullname"`
	PhoneNumber  string    `json:"phone_number"`
	Email        string    `json:"email"`
	UserType     string    `json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message  string `json:"message"`
	UserID   int64  `json:"user_id"`
	FullName string `json:"fullname"`
	UserType string `json:"user_type"`
	Redirect string `json:"redirect"`
	Token    string `json:"token"`
}
