package student

import "time"

type Student struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Input carries the client-settable fields for create and update.
type Input struct {
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	EnrollmentDate *time.Time `json:"enrollmentDate,omitempty"`
}
