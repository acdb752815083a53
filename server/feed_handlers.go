package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/studycircle/feedmux/feed"
	"github.com/studycircle/feedmux/utils"
)

// GetFeed serves one page of the viewer's personalized feed. The cursor is
// opaque; a malformed one is served as a fresh first page rather than an
// error.
func (h *Handler) GetFeed(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, errors.Wrap(utils.ErrInvalidArgument, "limit must be an integer"))
			return
		}
		limit = parsed
	}

	page, err := h.Assembler.Assemble(c.Request.Context(), userId, c.Query("cursor"), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := feedPayload{Posts: []postPayload{}}
	if err := copier.Copy(&resp.Posts, page.Posts); err != nil {
		abortWithError(c, err)
		return
	}
	if page.NextCursor != "" {
		resp.NextCursor = &page.NextCursor
	}
	c.JSON(http.StatusOK, resp)
}

type savePreferencesRequest struct {
	Tags     []string `json:"tags"`
	Backfill bool     `json:"backfill"`
}

func (h *Handler) GetFeedPreferences(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	tags, backfill, err := feed.PreferencesOf(h.DB, userId)
	if err != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}
	if tags == nil {
		tags = []string{}
	}
	c.JSON(http.StatusOK, preferencesPayload{Tags: tags, Backfill: backfill})
}

func (h *Handler) SaveFeedPreferences(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	var req savePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.Wrap(utils.ErrInvalidArgument, err.Error()))
		return
	}

	pref, err := feed.SavePreferences(h.DB, userId, req.Tags, req.Backfill)
	if err != nil {
		abortWithError(c, err)
		return
	}

	tags, err := pref.TagList()
	if err != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}
	if tags == nil {
		tags = []string{}
	}
	c.JSON(http.StatusOK, preferencesPayload{Tags: tags, Backfill: pref.ShowOtherContent})
}
