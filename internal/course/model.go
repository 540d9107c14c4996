package course

import "time"

type Course struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Credits   int       `json:"credits"`
	TeacherID *int64    `json:"teacherId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input carries the client-settable fields for create and update.
type Input struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Credits   int    `json:"credits"`
	TeacherID *int64 `json:"teacherId,omitempty"`
}
