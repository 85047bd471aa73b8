package entity

import "time"

type ActivityLog struct {
	ID uint64

	Log string

	CreatedAt time.Time
}
