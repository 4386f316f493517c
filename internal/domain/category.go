package domain

import "time"

// Category groups posts into browsable sections.
type Category struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}
