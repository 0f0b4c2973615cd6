package question

import "time"

// Question is a piece of content that can be assigned to regions.
// Content is never edited once an assignment references it, so historical
// cycles keep their integrity.
type Question struct {
	ID        int64
	Content   string
	CreatedAt time.Time
}
