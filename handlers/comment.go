package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"visage/models"
)

type textRequest struct {
	Text string `json:"text"`
}

// CreateComment serves POST /comments/post/:postId and /comments/story/:storyId.
func (h *Handler) CreateComment(kind models.ParentKind) gin.HandlerFunc {
	param, notFound := "postId", "Post not found"
	if kind == models.ParentStory {
		param, notFound = "storyId", "Story not found"
	}
	return func(c *gin.Context) {
		parentID, ok := pathID(c, param, notFound)
		if !ok {
			return
		}
		var req textRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			message(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		ctx, cancel := withTimeout(c, storeTimeout)
		defer cancel()

		comment, err := h.comments.Create(ctx, actor(c), kind, parentID, req.Text)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, comment)
	}
}

func (h *Handler) GetPostComments(c *gin.Context) {
	postID, ok := pathID(c, "postId", "Post not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	comments, err := h.comments.ForPost(ctx, postID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) GetStoryComments(c *gin.Context) {
	storyID, ok := pathID(c, "storyId", "Story not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	comments, err := h.comments.ForStory(ctx, storyID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id", "Comment not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if err := h.comments.Delete(ctx, actor(c), id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Comment removed")
}

func (h *Handler) LikeComment(c *gin.Context) {
	id, ok := pathID(c, "id", "Comment not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if err := h.comments.Like(ctx, actor(c), id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Comment liked successfully")
}

func (h *Handler) UnlikeComment(c *gin.Context) {
	id, ok := pathID(c, "id", "Comment not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if err := h.comments.Unlike(ctx, actor(c), id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Comment unliked successfully")
}

func (h *Handler) ReplyToComment(c *gin.Context) {
	id, ok := pathID(c, "id", "Comment not found")
	if !ok {
		return
	}
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	comment, err := h.comments.Reply(ctx, actor(c), id, req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
