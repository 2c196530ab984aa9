package model

import "time"

// State is the lifecycle of a soft deletable row
type State int

const (
	StateActive State = iota
	StateDeleted
)

func (s State) String() string {
	if s == StateDeleted {
		return "deleted"
	}

	return "active"
}

// SoftDelete is embedded into folders and files. Rows are never removed, they
// are flagged instead so they can still be audited or restored later.
type SoftDelete struct {
	Deleted   bool       `gorm:"not null;default:false;index" json:"-"`
	DeletedAt *time.Time `json:"-"`
}

// Status returns the state of the row and, for deleted rows, when it happened
func (s SoftDelete) Status() (State, *time.Time) {
	if s.Deleted {
		return StateDeleted, s.DeletedAt
	}

	return StateActive, nil
}
