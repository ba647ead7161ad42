package models

const (
	GuestID   = "guest"
	GuestName = "Guest"
)

// User is the signed-in identity persisted in client storage. Email is never validated.
type User struct {
	ID    string `json:"id" validate:"required,max=40"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email"`
}
