package models

import "time"

// ItemType is the kind of catalog item a progress row refers to.
type ItemType string

const (
	ItemTopic   ItemType = "topic"
	ItemProject ItemType = "project"
)

// Status is the parsed form of a progress status. The stored value stays
// an open string; anything outside the three known states is StatusUnknown.
type Status int

const (
	StatusUnknown Status = iota
	StatusNotStarted
	StatusInProgress
	StatusCompleted
)

const (
	StatusNotStartedValue = "not_started"
	StatusInProgressValue = "in_progress"
	StatusCompletedValue  = "completed"
)

func ParseStatus(s string) Status {
	switch s {
	case StatusNotStartedValue:
		return StatusNotStarted
	case StatusInProgressValue:
		return StatusInProgress
	case StatusCompletedValue:
		return StatusCompleted
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return StatusNotStartedValue
	case StatusInProgress:
		return StatusInProgressValue
	case StatusCompleted:
		return StatusCompletedValue
	default:
		return "unknown"
	}
}

// UserProgress is the per-(user, item) record. StartedAt and CompletedAt
// are write-once.
type UserProgress struct {
	ID                 string     `bson:"_id" json:"id"`
	UserID             string     `bson:"user_id" json:"user_id"`
	ItemID             string     `bson:"item_id" json:"item_id"`
	ItemType           ItemType   `bson:"item_type" json:"item_type"`
	Status             string     `bson:"status" json:"status"`
	ProgressPercentage int        `bson:"progress_percentage" json:"progress_percentage"`
	Notes              string     `bson:"notes" json:"notes"`
	StartedAt          *time.Time `bson:"started_at" json:"started_at"`
	CompletedAt        *time.Time `bson:"completed_at" json:"completed_at"`
	UpdatedAt          time.Time  `bson:"updated_at" json:"updated_at"`
}

// State returns the parsed status.
func (p *UserProgress) State() Status {
	return ParseStatus(p.Status)
}

// ProgressUpdate is the write payload accepted from clients.
type ProgressUpdate struct {
	ItemID             string   `json:"item_id"`
	ItemType           ItemType `json:"item_type"`
	Status             string   `json:"status"`
	ProgressPercentage int      `json:"progress_percentage"`
	Notes              string   `json:"notes"`
}

// ProgressPatch is applied to an existing row. Nil timestamps are left
// untouched; non-nil ones are only written when the stored value is unset.
type ProgressPatch struct {
	Status             string
	ProgressPercentage int
	Notes              string
	UpdatedAt          time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
}
