package service

import (
	"errors"
)

// Rejection errors for user-facing flows. Each maps to a short human-readable
// message in the bot layer; none of them leaves partial state behind.
var (
	// ErrNotOwner rejects /approve from anyone but the configured owner
	ErrNotOwner = errors.New("only the bot owner may approve groups")

	// ErrGroupNotApproved rejects operations in groups the owner has not approved
	ErrGroupNotApproved = errors.New("group is not approved")

	// ErrNotGroupAdmin rejects /pickwinner from non-administrators
	ErrNotGroupAdmin = errors.New("user is not a group administrator")

	// ErrNotReplyToForward rejects /pickwinner when it does not reply to a
	// post forwarded from a channel
	ErrNotReplyToForward = errors.New("command must reply to a forwarded channel post")

	// ErrNoGiveawayPost rejects a draw when the post is unknown or already picked
	ErrNoGiveawayPost = errors.New("giveaway post not found or already picked")

	// ErrWrongGroup rejects a draw from a group other than the post's linked group
	ErrWrongGroup = errors.New("post is not linked to this group")

	// ErrNoEntries rejects a draw when nobody has entered yet
	ErrNoEntries = errors.New("no entries for this post")

	// ErrDrawInProgress rejects a second concurrent draw on the same post
	ErrDrawInProgress = errors.New("a draw is already in progress for this post")
)
