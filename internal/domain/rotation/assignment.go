package rotation

import "time"

// Assignment is the durable record of which question is current for a
// region within a cycle. Created only during rotation and never mutated;
// historical rows feed the "used question" history of the selector.
type Assignment struct {
	ID         int64
	CycleID    int64
	RegionID   int64
	QuestionID int64
	CreatedAt  time.Time
}

// CurrentQuestion is the read model served to clients and stored in the
// lookup cache: the active assignment for a region joined with the
// question content and the active cycle's bounds.
type CurrentQuestion struct {
	RegionID    int64     `json:"region_id"`
	QuestionID  int64     `json:"question_id"`
	Content     string    `json:"content"`
	CycleID     int64     `json:"cycle_id"`
	CycleEndsAt time.Time `json:"cycle_ends_at"`
}
