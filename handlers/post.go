package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"visage/services"
)

func (h *Handler) CreatePost(c *gin.Context) {
	form, src, release, err := h.bindMediaForm(c)
	defer release()
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := withTimeout(c, mediaTimeout)
	defer cancel()

	post, err := h.posts.Create(ctx, actor(c), services.CreatePostInput{
		Caption:  form.Caption,
		Location: form.Location,
		Media:    src,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) GetPost(c *gin.Context) {
	id, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	post, err := h.posts.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) GetUserPosts(c *gin.Context) {
	userID, ok := pathID(c, "userId", "User not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	posts, err := h.posts.ByUser(ctx, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) GetFeed(c *gin.Context) {
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	posts, err := h.posts.Feed(ctx, actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) LikePost(c *gin.Context) {
	id, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if err := h.posts.Like(ctx, actor(c), id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Post liked successfully")
}

func (h *Handler) UnlikePost(c *gin.Context) {
	id, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if err := h.posts.Unlike(ctx, actor(c), id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Post unliked successfully")
}

func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}
	var req services.UpdatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	post, err := h.posts.Update(ctx, actor(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if err := h.posts.Delete(ctx, actor(c), id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Post removed")
}

func (h *Handler) GetPostsByHashtag(c *gin.Context) {
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	posts, err := h.posts.ByHashtag(ctx, c.Param("tag"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) GetExplore(c *gin.Context) {
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	posts, err := h.posts.Explore(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
