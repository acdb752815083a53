package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studycircle/feedmux/feed"
	"github.com/studycircle/feedmux/model"
	"github.com/studycircle/feedmux/notifier"
	"github.com/studycircle/feedmux/utils"
	"github.com/studycircle/feedmux/utils/dotenv"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

type testServer struct {
	db     *gorm.DB
	router *gin.Engine
}

// newTestServer wires the full handler stack against a temp database with an
// in-process event bus, the same shape main assembles in production minus the
// JWT middleware. Caller identity is injected per request via the sub header.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, _ := utils.CreateTempDB(t)

	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	writer := notifier.NewWriter(db, bus)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = writer.Run(ctx)
	}()
	time.Sleep(50 * time.Millisecond)

	router := gin.New()
	RegisterRoutes(router, &Handler{
		DB:         db,
		Assembler:  &feed.Assembler{DB: db},
		Dispatcher: notifier.NewDispatcher(bus),
	})
	return &testServer{db: db, router: router}
}

func (s *testServer) do(t *testing.T, asUserId, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if asUserId != "" {
		req.Header.Set("sub", asUserId)
	}
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}

func (s *testServer) notificationCountFor(t *testing.T, userId string, kind model.NotificationType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, s.db.Model(&model.Notification{}).
		Where("user_id = ? AND type = ?", userId, kind).
		Count(&count).Error)
	return count
}

func TestMissingIdentityRejected(t *testing.T) {
	s := newTestServer(t)
	recorder := s.do(t, "", "GET", "/feed", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	recorder := s.do(t, "", "GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestFriendRequestLifecycle(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")
	bob := utils.TestCreateUser(t, s.db, "Bob", "B")
	eve := utils.TestCreateUser(t, s.db, "Eve", "E")

	// Create.
	recorder := s.do(t, alice.Id, "POST", "/friend-requests",
		gin.H{"recipientId": bob.Id})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var created friendRequestPayload
	decodeBody(t, recorder, &created)
	assert.Equal(t, "PENDING", created.Status)

	// Exactly one notification reaches the recipient.
	require.Eventually(t, func() bool {
		return s.notificationCountFor(t, bob.Id, model.NotificationTypeFriendRequest) == 1
	}, 3*time.Second, 50*time.Millisecond)

	// Duplicate in either direction is refused.
	recorder = s.do(t, alice.Id, "POST", "/friend-requests", gin.H{"recipientId": bob.Id})
	assert.Equal(t, http.StatusConflict, recorder.Code)
	recorder = s.do(t, bob.Id, "POST", "/friend-requests", gin.H{"recipientId": alice.Id})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	// Self requests are invalid.
	recorder = s.do(t, alice.Id, "POST", "/friend-requests", gin.H{"recipientId": alice.Id})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	// Only the recipient may respond.
	requestPath := "/friend-requests/" + created.Id
	recorder = s.do(t, eve.Id, "PATCH", requestPath, gin.H{"action": "accept"})
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	recorder = s.do(t, alice.Id, "PATCH", requestPath, gin.H{"action": "accept"})
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// Accept.
	recorder = s.do(t, bob.Id, "PATCH", requestPath, gin.H{"action": "accept"})
	require.Equal(t, http.StatusOK, recorder.Code)
	var accepted friendRequestPayload
	decodeBody(t, recorder, &accepted)
	assert.Equal(t, "ACCEPTED", accepted.Status)

	// The edge transitions exactly once.
	recorder = s.do(t, bob.Id, "PATCH", requestPath, gin.H{"action": "reject"})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	// Exactly one acceptance notification reaches the original sender.
	require.Eventually(t, func() bool {
		return s.notificationCountFor(t, alice.Id, model.NotificationTypeFriendRequestAccepted) == 1
	}, 3*time.Second, 50*time.Millisecond)
	assert.EqualValues(t, 1,
		s.notificationCountFor(t, bob.Id, model.NotificationTypeFriendRequest))

	// Both sides now list each other as friends.
	recorder = s.do(t, alice.Id, "GET", "/friends", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var friends []userPayload
	decodeBody(t, recorder, &friends)
	require.Len(t, friends, 1)
	assert.Equal(t, bob.Id, friends[0].Id)
}

func TestRespondUnknownRequest(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")

	recorder := s.do(t, alice.Id, "PATCH", "/friend-requests/no-such-id", gin.H{"action": "accept"})
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = s.do(t, alice.Id, "PATCH", "/friend-requests/no-such-id", gin.H{"action": "explode"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

// The unique pair index refuses a second active edge even when a concurrent
// create slipped past the handler's existence check.
func TestDuplicateEdgeRejectedByStorage(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")
	bob := utils.TestCreateUser(t, s.db, "Bob", "B")
	utils.TestCreateFriendRequest(t, s.db, alice, bob, model.FriendRequestStatusPending)

	dup := model.FriendRequest{
		Id:          "dup",
		SenderID:    bob.Id,
		RecipientID: alice.Id,
		Status:      model.FriendRequestStatusPending,
	}
	assert.Error(t, s.db.Create(&dup).Error)
}

func TestRejectedPairCanRetry(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")
	bob := utils.TestCreateUser(t, s.db, "Bob", "B")
	utils.TestCreateFriendRequest(t, s.db, alice, bob, model.FriendRequestStatusRejected)

	recorder := s.do(t, alice.Id, "POST", "/friend-requests", gin.H{"recipientId": bob.Id})
	assert.Equal(t, http.StatusCreated, recorder.Code)
}

func TestFriendRequestStatusEndpoint(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")
	bob := utils.TestCreateUser(t, s.db, "Bob", "B")

	recorder := s.do(t, alice.Id, "GET", "/friend-requests/status?userId="+bob.Id, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var status friendStatusPayload
	decodeBody(t, recorder, &status)
	assert.Equal(t, "NONE", status.Status)

	utils.TestCreateFriendRequest(t, s.db, alice, bob, model.FriendRequestStatusPending)
	recorder = s.do(t, alice.Id, "GET", "/friend-requests/status?userId="+bob.Id, nil)
	decodeBody(t, recorder, &status)
	assert.Equal(t, "PENDING", status.Status)
	assert.True(t, status.IsOutgoing)

	recorder = s.do(t, bob.Id, "GET", "/friend-requests/status?userId="+alice.Id, nil)
	decodeBody(t, recorder, &status)
	assert.Equal(t, "PENDING", status.Status)
	assert.False(t, status.IsOutgoing)
}

func TestUnfriend(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")
	bob := utils.TestCreateUser(t, s.db, "Bob", "B")
	utils.TestCreateFriendRequest(t, s.db, alice, bob, model.FriendRequestStatusAccepted)

	recorder := s.do(t, bob.Id, "DELETE", "/friends/"+alice.Id, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = s.do(t, alice.Id, "GET", "/friends/count", nil)
	var count struct {
		Count int `json:"count"`
	}
	decodeBody(t, recorder, &count)
	assert.Equal(t, 0, count.Count)

	// Already gone.
	recorder = s.do(t, bob.Id, "DELETE", "/friends/"+alice.Id, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestFeedEndpoint(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")
	bob := utils.TestCreateUser(t, s.db, "Bob", "B")
	utils.TestCreateFriendRequest(t, s.db, alice, bob, model.FriendRequestStatusAccepted)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		utils.TestCreatePost(t, s.db, bob, fmt.Sprintf("post %d", i), nil, base.Add(time.Duration(i)*time.Second))
	}

	recorder := s.do(t, alice.Id, "GET", "/feed?limit=2", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var page feedPayload
	decodeBody(t, recorder, &page)
	require.Len(t, page.Posts, 2)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, bob.Id, page.Posts[0].User.Id)

	recorder = s.do(t, alice.Id, "GET", "/feed?limit=2&cursor="+*page.NextCursor, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	decodeBody(t, recorder, &page)
	assert.Len(t, page.Posts, 1)
	assert.Nil(t, page.NextCursor)
}

// A garbage cursor serves a fresh first page, never an error.
func TestFeedEndpointMalformedCursor(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")
	utils.TestCreatePost(t, s.db, alice, "mine", nil, time.Now().Add(-time.Minute))

	recorder := s.do(t, alice.Id, "GET", "/feed?cursor=garbage-token", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var page feedPayload
	decodeBody(t, recorder, &page)
	assert.Len(t, page.Posts, 1)
}

func TestPreferencesEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")

	// Defaults before any save.
	recorder := s.do(t, alice.Id, "GET", "/feed/preferences", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var prefs preferencesPayload
	decodeBody(t, recorder, &prefs)
	assert.Empty(t, prefs.Tags)
	assert.False(t, prefs.Backfill)

	recorder = s.do(t, alice.Id, "POST", "/feed/preferences",
		gin.H{"tags": []string{"Physics", "Art"}, "backfill": true})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = s.do(t, alice.Id, "GET", "/feed/preferences", nil)
	decodeBody(t, recorder, &prefs)
	assert.Equal(t, []string{"Physics", "Art"}, prefs.Tags)
	assert.True(t, prefs.Backfill)

	recorder = s.do(t, alice.Id, "POST", "/feed/preferences",
		gin.H{"tags": []string{"Astrology"}, "backfill": false})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPostEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")
	bob := utils.TestCreateUser(t, s.db, "Bob", "B")

	recorder := s.do(t, alice.Id, "POST", "/posts", gin.H{"content": ""})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = s.do(t, alice.Id, "POST", "/posts",
		gin.H{"content": "hello", "tags": []string{"Astrology"}})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = s.do(t, alice.Id, "POST", "/posts",
		gin.H{"content": "hello", "tags": []string{"Physics"}})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var post postPayload
	decodeBody(t, recorder, &post)
	assert.Equal(t, alice.Id, post.UserID)
	assert.Equal(t, []string{"Physics"}, post.Tags)
	assert.Equal(t, alice.Id, post.User.Id)

	// Only the author can delete.
	recorder = s.do(t, bob.Id, "DELETE", "/posts/"+post.Id, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	recorder = s.do(t, alice.Id, "DELETE", "/posts/"+post.Id, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	recorder = s.do(t, alice.Id, "DELETE", "/posts/"+post.Id, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListAuthorPosts(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")
	bob := utils.TestCreateUser(t, s.db, "Bob", "B")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		utils.TestCreatePost(t, s.db, bob, fmt.Sprintf("post %d", i), nil, base.Add(time.Duration(i)*time.Second))
	}
	utils.TestCreatePost(t, s.db, alice, "not bobs", nil, base)

	recorder := s.do(t, alice.Id, "GET", "/posts?userId="+bob.Id+"&limit=2", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var page feedPayload
	decodeBody(t, recorder, &page)
	require.Len(t, page.Posts, 2)
	require.NotNil(t, page.NextCursor)

	recorder = s.do(t, alice.Id, "GET", "/posts?userId="+bob.Id+"&limit=2&cursor="+*page.NextCursor, nil)
	decodeBody(t, recorder, &page)
	require.Len(t, page.Posts, 1)
	assert.Nil(t, page.NextCursor)
	for _, p := range page.Posts {
		assert.Equal(t, bob.Id, p.UserID)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")
	bob := utils.TestCreateUser(t, s.db, "Bob", "B")

	notification := model.Notification{
		Id:        "n-1",
		UserID:    alice.Id,
		Type:      model.NotificationTypeFriendRequest,
		Title:     "New Friend Request",
		Content:   "Bob B sent you a friend request",
		RelatedId: "req-1",
	}
	require.NoError(t, s.db.Create(&notification).Error)

	recorder := s.do(t, alice.Id, "GET", "/notifications", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var list []notificationPayload
	decodeBody(t, recorder, &list)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)

	// Only the recipient can mark it read.
	recorder = s.do(t, bob.Id, "PATCH", "/notifications/n-1/read", nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = s.do(t, alice.Id, "PATCH", "/notifications/n-1/read", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var updated notificationPayload
	decodeBody(t, recorder, &updated)
	assert.True(t, updated.Read)

	recorder = s.do(t, alice.Id, "PATCH", "/notifications/missing/read", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestTrendingTagsEndpoint(t *testing.T) {
	s := newTestServer(t)
	alice := utils.TestCreateUser(t, s.db, "Alice", "A")

	base := time.Now().Add(-time.Hour)
	utils.TestCreatePost(t, s.db, alice, "a", []string{"Physics", "Art"}, base)
	utils.TestCreatePost(t, s.db, alice, "b", []string{"Physics"}, base.Add(time.Second))
	deleted := utils.TestCreatePost(t, s.db, alice, "c", []string{"Law"}, base.Add(2*time.Second))
	require.NoError(t, s.db.Delete(deleted).Error)

	recorder := s.do(t, alice.Id, "GET", "/trending/tags", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var tags []utils.TrendingTag
	decodeBody(t, recorder, &tags)
	require.Len(t, tags, 2)
	assert.Equal(t, "Physics", tags[0].Name)
	assert.EqualValues(t, 2, tags[0].Count)
	assert.Equal(t, "Art", tags[1].Name)
}
