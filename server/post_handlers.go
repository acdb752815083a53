package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/studycircle/feedmux/feed"
	"github.com/studycircle/feedmux/model"
	"github.com/studycircle/feedmux/utils"
)

type createPostBody struct {
	Content  string   `json:"content"`
	ImageUrl string   `json:"imageUrl"`
	Tags     []string `json:"tags"`
}

func (h *Handler) CreatePost(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	var body createPostBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, errors.Wrap(utils.ErrInvalidArgument, err.Error()))
		return
	}
	if body.Content == "" {
		abortWithError(c, errors.Wrap(utils.ErrInvalidArgument, "content is required"))
		return
	}
	if bad, ok := model.ValidateTags(body.Tags); !ok {
		abortWithError(c, errors.Wrapf(utils.ErrInvalidArgument, "unknown tag %q", bad))
		return
	}

	post := model.Post{
		Id:       uuid.New().String(),
		UserID:   userId,
		Content:  body.Content,
		ImageUrl: body.ImageUrl,
		Tags:     pq.StringArray(body.Tags),
	}
	if err := h.DB.Create(&post).Error; err != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}
	// Re-read with the author attached so the response matches feed items.
	h.DB.Preload("User").Where("id = ?", post.Id).Find(&post)

	var resp postPayload
	if err := copier.Copy(&resp, &post); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListAuthorPosts serves a single author's posts as one chronological stream,
// using the same keyset cursor machinery as the feed. Defaults to the caller
// when no userId is given.
func (h *Handler) ListAuthorPosts(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}
	authorId := c.Query("userId")
	if authorId == "" {
		authorId = userId
	}

	limit := feed.DefaultPageSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, errors.Wrap(utils.ErrInvalidArgument, "limit must be a positive integer"))
			return
		}
		limit = utils.Min(parsed, feed.MaxPageSize)
	}

	cursor := feed.DecodeCursor(c.Query("cursor"))
	posts, err := feed.QueryAuthorPosts(c.Request.Context(), h.DB, authorId, cursor.Preferred, limit+1)
	if err != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	resp := feedPayload{Posts: []postPayload{}}
	if err := copier.Copy(&resp.Posts, posts); err != nil {
		abortWithError(c, err)
		return
	}
	if hasMore {
		token := feed.EncodeCursor(&feed.Cursor{Preferred: feed.PositionOf(posts[len(posts)-1])})
		resp.NextCursor = &token
	}
	c.JSON(http.StatusOK, resp)
}

// DeletePost soft deletes a post. Author only.
func (h *Handler) DeletePost(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		return
	}

	var post model.Post
	result := h.DB.Where("id = ?", c.Param("id")).Limit(1).Find(&post)
	if result.Error != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, result.Error.Error()))
		return
	}
	if result.RowsAffected == 0 {
		abortWithError(c, errors.Wrap(utils.ErrNotFound, "post not found"))
		return
	}
	if post.UserID != userId {
		abortWithError(c, errors.Wrap(utils.ErrForbidden, "only the author can delete a post"))
		return
	}

	if err := h.DB.Delete(&post).Error; err != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
