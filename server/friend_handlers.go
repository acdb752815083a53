package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/studycircle/feedmux/feed"
	"github.com/studycircle/feedmux/model"
	"github.com/studycircle/feedmux/utils"
	. "github.com/studycircle/feedmux/utils/log"
)

type createFriendRequestBody struct {
	RecipientId string `json:"recipientId"`
}

// CreateFriendRequest creates a PENDING edge from the caller to the
// recipient. At most one non-rejected edge may exist between any pair, in
// either direction; a second request is refused with Conflict.
func (h *Handler) CreateFriendRequest(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	var body createFriendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil || body.RecipientId == "" {
		abortWithError(c, errors.Wrap(utils.ErrInvalidArgument, "recipientId is required"))
		return
	}
	if body.RecipientId == userId {
		abortWithError(c, errors.Wrap(utils.ErrInvalidArgument, "cannot send a friend request to yourself"))
		return
	}

	var count int64
	err := h.DB.Model(&model.FriendRequest{}).
		Where("((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)) AND status <> ?",
			userId, body.RecipientId, body.RecipientId, userId, model.FriendRequestStatusRejected).
		Count(&count).Error
	if err != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}
	if count > 0 {
		abortWithError(c, errors.Wrap(utils.ErrConflict, "friend request already exists"))
		return
	}

	request := model.FriendRequest{
		Id:          uuid.New().String(),
		SenderID:    userId,
		RecipientID: body.RecipientId,
		Status:      model.FriendRequestStatusPending,
	}
	if err := h.DB.Create(&request).Error; err != nil {
		// A concurrent create for the same pair can pass the count above and
		// lose the race on the unique pair index instead.
		if strings.Contains(err.Error(), "duplicate key") {
			abortWithError(c, errors.Wrap(utils.ErrConflict, "friend request already exists"))
			return
		}
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}

	// Notification is best effort, the created edge is the source of truth.
	if err := h.Dispatcher.OnFriendRequestCreated(&request, h.displayName(request.SenderID)); err != nil {
		Log.Error("fail to dispatch friend request notification: ", err)
	}

	var resp friendRequestPayload
	if err := copier.Copy(&resp, &request); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

type respondFriendRequestBody struct {
	Action string `json:"action"`
}

// RespondFriendRequest transitions a PENDING edge exactly once, to ACCEPTED
// or REJECTED. Only the recipient may respond; a second transition attempt
// fails with Conflict.
func (h *Handler) RespondFriendRequest(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	var body respondFriendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, errors.Wrap(utils.ErrInvalidArgument, err.Error()))
		return
	}
	var target model.FriendRequestStatus
	switch body.Action {
	case "accept":
		target = model.FriendRequestStatusAccepted
	case "reject":
		target = model.FriendRequestStatusRejected
	default:
		abortWithError(c, errors.Wrap(utils.ErrInvalidArgument, "action must be accept or reject"))
		return
	}

	var request model.FriendRequest
	result := h.DB.Where("id = ?", c.Param("id")).Limit(1).Find(&request)
	if result.Error != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, result.Error.Error()))
		return
	}
	if result.RowsAffected == 0 {
		abortWithError(c, errors.Wrap(utils.ErrNotFound, "friend request not found"))
		return
	}
	if request.RecipientID != userId {
		abortWithError(c, errors.Wrap(utils.ErrForbidden, "not authorized to respond to this request"))
		return
	}
	if request.Status != model.FriendRequestStatusPending {
		abortWithError(c, errors.Wrap(utils.ErrConflict, "friend request already "+request.Status.String()))
		return
	}

	// The guard above plus this conditional update makes the transition
	// single-shot even under concurrent responders.
	update := h.DB.Model(&model.FriendRequest{}).
		Where("id = ? AND status = ?", request.Id, model.FriendRequestStatusPending).
		Update("status", target)
	if update.Error != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, update.Error.Error()))
		return
	}
	if update.RowsAffected == 0 {
		abortWithError(c, errors.Wrap(utils.ErrConflict, "friend request already transitioned"))
		return
	}
	request.Status = target

	if target == model.FriendRequestStatusAccepted {
		if err := h.Dispatcher.OnFriendRequestAccepted(&request, h.displayName(request.RecipientID)); err != nil {
			Log.Error("fail to dispatch friend acceptance notification: ", err)
		}
	}

	var resp friendRequestPayload
	if err := copier.Copy(&resp, &request); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PendingFriendRequests lists incoming PENDING requests, newest first.
func (h *Handler) PendingFriendRequests(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	var requests []model.FriendRequest
	err := h.DB.Preload("Sender").
		Where("recipient_id = ? AND status = ?", userId, model.FriendRequestStatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}

	resp := []friendRequestPayload{}
	if err := copier.Copy(&resp, requests); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FriendRequestStatus reports the edge state between the caller and another
// user: NONE, PENDING, ACCEPTED or REJECTED, plus which side initiated it.
func (h *Handler) FriendRequestStatus(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}
	targetId := c.Query("userId")
	if targetId == "" {
		abortWithError(c, errors.Wrap(utils.ErrInvalidArgument, "userId is required"))
		return
	}

	var request model.FriendRequest
	result := h.DB.
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userId, targetId, targetId, userId).
		Order("created_at DESC").
		Limit(1).
		Find(&request)
	if result.Error != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, result.Error.Error()))
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusOK, friendStatusPayload{Status: "NONE"})
		return
	}
	c.JSON(http.StatusOK, friendStatusPayload{
		Status:     request.Status.String(),
		RequestId:  request.Id,
		IsOutgoing: request.SenderID == userId,
	})
}

// ListFriends returns the caller's accepted peers.
func (h *Handler) ListFriends(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	peers, err := feed.PeersOf(h.DB, userId)
	if err != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}

	users := []model.User{}
	if len(peers) > 0 {
		if err := h.DB.Where("id IN ?", peers).Find(&users).Error; err != nil {
			abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
			return
		}
	}

	resp := []userPayload{}
	if err := copier.Copy(&resp, users); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) FriendsCount(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	peers, err := feed.PeersOf(h.DB, userId)
	if err != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(peers)})
}

// Unfriend deletes the ACCEPTED edge between the caller and the given user,
// in whichever direction it exists, returning the pair to the "no edge"
// state. It never recreates a PENDING edge.
func (h *Handler) Unfriend(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}
	friendId := c.Param("id")

	result := h.DB.
		Where("((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)) AND status = ?",
			userId, friendId, friendId, userId, model.FriendRequestStatusAccepted).
		Delete(&model.FriendRequest{})
	if result.Error != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, result.Error.Error()))
		return
	}
	if result.RowsAffected == 0 {
		abortWithError(c, errors.Wrap(utils.ErrNotFound, "no friendship with user "+friendId))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// displayName renders a user's name for notification content. Falls back to
// the raw id when the profile row is missing, notifications should never fail
// over display sugar.
func (h *Handler) displayName(userId string) string {
	var user model.User
	result := h.DB.Where("id = ?", userId).Limit(1).Find(&user)
	if result.Error != nil || result.RowsAffected == 0 {
		return userId
	}
	if user.FirstName == "" && user.LastName == "" {
		return user.Username
	}
	return user.FirstName + " " + user.LastName
}
