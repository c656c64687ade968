package models

import "time"

// Course is a catalog entry the user is enrolled in (or teaches).
type Course struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Title    string `json:"title"`
	Teacher  string `json:"teacher"`
	Credits  int    `json:"credits"`
	Semester string `json:"semester"`
}

// Assignment is a dated piece of coursework.
type Assignment struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	Title     string    `json:"title"`
	DueDate   time.Time `json:"dueDate"`
	Submitted bool      `json:"submitted"`
}

// Grade is a scored result for a course. Score is on a 0–100 scale;
// the course credits weight it in the GPA computation.
type Grade struct {
	CourseID string  `json:"courseId"`
	Course   string  `json:"course"`
	Score    float64 `json:"score"`
	Credits  int     `json:"credits"`
}

// Material is a downloadable course resource.
type Material struct {
	ID       string `json:"id"`
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
	Kind     string `json:"kind"`
	URL      string `json:"url"`
}
