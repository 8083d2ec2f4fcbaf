package models

import (
	"time"
)

// GiveawayPost represents a mention-tagged channel announcement being tracked
// as a running giveaway. The pair (ChannelID, ChannelPostID) is unique.
type GiveawayPost struct {
	ID            int64      `db:"id"`
	ChannelID     int64      `db:"channel_id"`
	ChannelPostID int64      `db:"channel_post_id"`
	// DiscussionGroupID is the channel's linked discussion group, resolved
	// best-effort at detection time. Nil when the lookup failed or the
	// channel has no linked group.
	DiscussionGroupID *int64     `db:"discussion_group_id"`
	MentionTag        string     `db:"mention_tag"`
	Picked            bool       `db:"picked"`
	Drawing           bool       `db:"drawing"`
	PickedAt          *time.Time `db:"picked_at"`
	CreatedAt         time.Time  `db:"created_at"`
}

// IsPickable returns true if winners have not been drawn yet
func (p *GiveawayPost) IsPickable() bool {
	return !p.Picked
}

// BelongsToGroup reports whether the post may be drawn from the given group.
// An unknown discussion group skips the binding check.
func (p *GiveawayPost) BelongsToGroup(groupID int64) bool {
	if p.DiscussionGroupID == nil {
		return true
	}
	return *p.DiscussionGroupID == groupID
}
