package domain

import "time"

// Course is a course listing owned by a user.
type Course struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// VisibleTo reports whether the viewer may see the course.
// Unpublished courses are only visible to their owner.
func (c *Course) VisibleTo(viewerID string) bool {
	return c.IsPublished || (viewerID != "" && c.UserID == viewerID)
}

// Enrollment links a user to a course. At most one exists per pair.
type Enrollment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CourseID  string    `json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
}
