package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/studycircle/feedmux/utils"
	. "github.com/studycircle/feedmux/utils/log"
)

const trendingTagsLimit = 5

// TrendingTags returns the most used tags across all posts. The leaderboard
// is cached in redis with a short TTL since computing it touches every post.
func (h *Handler) TrendingTags(c *gin.Context) {
	ctx := c.Request.Context()

	if h.Redis != nil {
		tags, hit, err := h.Redis.GetCachedTrendingTags(ctx)
		if err != nil {
			// Cache trouble is not a request failure.
			Log.Warn("fail to read trending tags cache: ", err)
		}
		if hit {
			c.JSON(http.StatusOK, tags)
			return
		}
	}

	var rows []utils.TrendingTag
	err := h.DB.WithContext(ctx).Raw(
		`SELECT unnest(tags) AS name, COUNT(*) AS count
		 FROM posts
		 WHERE deleted_at IS NULL
		 GROUP BY name
		 ORDER BY count DESC, name ASC
		 LIMIT ?`, trendingTagsLimit).Scan(&rows).Error
	if err != nil {
		abortWithError(c, errors.Wrap(utils.ErrUnavailable, err.Error()))
		return
	}
	for i := range rows {
		// There is no Tag entity, the name doubles as the id.
		rows[i].Id = rows[i].Name
	}

	if h.Redis != nil {
		if err := h.Redis.SetCachedTrendingTags(ctx, rows); err != nil {
			Log.Warn("fail to cache trending tags: ", err)
		}
	}
	c.JSON(http.StatusOK, rows)
}
