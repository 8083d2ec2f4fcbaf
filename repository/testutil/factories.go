package testutil

import (
	"fmt"

	"github.com/OfficialBika/BikaCommentPicker/models"
)

// CreateTestEntry creates an entry with default values for one user
func CreateTestEntry(groupID, channelID, channelPostID, userID int64) *models.Entry {
	return &models.Entry{
		GroupID:          groupID,
		ChannelID:        channelID,
		ChannelPostID:    channelPostID,
		UserID:           userID,
		Username:         fmt.Sprintf("user%d", userID),
		DisplayName:      fmt.Sprintf("User %d", userID),
		Comment:          "count me in",
		CommentMessageID: userID + 9000,
	}
}

// CreateTestWinnerRecord creates a winner history row with default values
func CreateTestWinnerRecord(groupID, channelID, channelPostID, userID int64) *models.WinnerRecord {
	return &models.WinnerRecord{
		GroupID:        groupID,
		ChannelID:      channelID,
		ChannelPostID:  channelPostID,
		WinnerUserID:   userID,
		WinnerUsername: fmt.Sprintf("user%d", userID),
		WinnerName:     fmt.Sprintf("User %d", userID),
		WinnerComment:  "count me in",
	}
}
