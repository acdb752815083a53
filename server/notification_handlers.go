package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/studycircle/feedmux/model"
	"github.com/studycircle/feedmux/utils"
)

const notificationPageCap = 20

// ListNotifications returns the caller's most recent notifications, newest
// first, capped server side.
func (h *Handler) ListNotifications(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	var notifications []model.Notification
	err := h.DB.
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Limit(notificationPageCap).
		Find(&notifications).Error
	if err != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}

	resp := []notificationPayload{}
	if err := copier.Copy(&resp, notifications); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarkNotificationRead flips the read flag. Only the recipient may do so; the
// flag is the single mutable field of a notification.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	var notification model.Notification
	result := h.DB.Where("id = ?", c.Param("id")).Limit(1).Find(&notification)
	if result.Error != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, result.Error.Error()))
		return
	}
	if result.RowsAffected == 0 {
		abortWithError(c, errors.Wrap(utils.ErrNotFound, "notification not found"))
		return
	}
	if notification.UserID != userId {
		abortWithError(c, errors.Wrap(utils.ErrForbidden, "not the recipient of this notification"))
		return
	}

	if err := h.DB.Model(&notification).Update("read", true).Error; err != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}
	notification.Read = true

	var resp notificationPayload
	if err := copier.Copy(&resp, &notification); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
