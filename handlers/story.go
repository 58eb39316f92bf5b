package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"visage/models"
	"visage/services"
)

func (h *Handler) CreateStory(c *gin.Context) {
	form, src, release, err := h.bindMediaForm(c)
	defer release()
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := withTimeout(c, mediaTimeout)
	defer cancel()

	story, err := h.stories.Create(ctx, actor(c), services.CreateStoryInput{
		Content:   form.Content,
		StoryType: form.StoryType,
		Media:     src,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}

func (h *Handler) GetStory(c *gin.Context) {
	id, ok := pathID(c, "id", "Story not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	story, err := h.stories.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *Handler) GetStoryFeed(c *gin.Context) {
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	stories, err := h.stories.Feed(ctx, actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stories)
}

func (h *Handler) GetUserStories(c *gin.Context) {
	userID, ok := pathID(c, "userId", "User not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	stories, err := h.stories.ByUser(ctx, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stories)
}

// StoriesOfType serves the poetry and thoughts listings.
func (h *Handler) StoriesOfType(storyType models.StoryType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, storeTimeout)
		defer cancel()

		stories, err := h.stories.ByType(ctx, storyType)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, stories)
	}
}

func (h *Handler) LikeStory(c *gin.Context) {
	id, ok := pathID(c, "id", "Story not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if err := h.stories.Like(ctx, actor(c), id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Story liked successfully")
}

func (h *Handler) UnlikeStory(c *gin.Context) {
	id, ok := pathID(c, "id", "Story not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if err := h.stories.Unlike(ctx, actor(c), id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Story unliked successfully")
}

func (h *Handler) ViewStory(c *gin.Context) {
	id, ok := pathID(c, "id", "Story not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	fresh, err := h.stories.View(ctx, actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !fresh {
		message(c, http.StatusOK, "Story already viewed")
		return
	}
	message(c, http.StatusOK, "Story viewed")
}

func (h *Handler) DeleteStory(c *gin.Context) {
	id, ok := pathID(c, "id", "Story not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if err := h.stories.Delete(ctx, actor(c), id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Story removed")
}
