package models

import (
	"time"
)

// ApprovedGroup represents a discussion group the owner has cleared to run giveaways
type ApprovedGroup struct {
	GroupID    int64     `db:"group_id"`
	ApprovedBy int64     `db:"approved_by"`
	ApprovedAt time.Time `db:"approved_at"`
}
