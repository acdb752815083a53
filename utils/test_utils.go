package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studycircle/feedmux/model"
)

// Seed helpers shared by store-backed tests. Each creates one row against the
// provided (temp) database and fails the test on any error.

func TestCreateUser(t *testing.T, db *gorm.DB, firstName string, lastName string) *model.User {
	t.Helper()
	user := model.User{
		Id:        uuid.New().String(),
		FirstName: firstName,
		LastName:  lastName,
		Username:  firstName + "_" + lastName,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// TestCreatePost pins CreatedAt explicitly so tests control the feed sort key.
func TestCreatePost(t *testing.T, db *gorm.DB, author *model.User, content string, tags []string, createdAt time.Time) *model.Post {
	t.Helper()
	post := model.Post{
		Id:        uuid.New().String(),
		CreatedAt: createdAt,
		UserID:    author.Id,
		Content:   content,
		Tags:      pq.StringArray(tags),
	}
	require.NoError(t, db.Create(&post).Error)
	return &post
}

// TestCreatePostWithId is for tests that need a deterministic tie-break order
// between posts sharing a creation instant.
func TestCreatePostWithId(t *testing.T, db *gorm.DB, id string, author *model.User, content string, tags []string, createdAt time.Time) *model.Post {
	t.Helper()
	post := model.Post{
		Id:        id,
		CreatedAt: createdAt,
		UserID:    author.Id,
		Content:   content,
		Tags:      pq.StringArray(tags),
	}
	require.NoError(t, db.Create(&post).Error)
	return &post
}

func TestCreateFriendRequest(t *testing.T, db *gorm.DB, sender *model.User, recipient *model.User, status model.FriendRequestStatus) *model.FriendRequest {
	t.Helper()
	req := model.FriendRequest{
		Id:          uuid.New().String(),
		SenderID:    sender.Id,
		RecipientID: recipient.Id,
		Status:      status,
	}
	require.NoError(t, db.Create(&req).Error)
	return &req
}
