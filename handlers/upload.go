package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"visage/media"
	"visage/services"
)

// multipartOverhead leaves room for the non-file form fields.
const multipartOverhead = 1 << 20

// mediaForm covers the fields of post and story creation. It binds from
// multipart forms and JSON bodies alike.
type mediaForm struct {
	Caption   string `form:"caption" json:"caption"`
	Location  string `form:"location" json:"location"`
	Content   string `form:"content" json:"content"`
	StoryType string `form:"storyType" json:"storyType"`
	MediaURL  string `form:"mediaUrl" json:"mediaUrl"`
}

// bindMediaForm reads the form and the optional "media" file. The returned
// func releases the file and must always be called.
func (h *Handler) bindMediaForm(c *gin.Context) (*mediaForm, media.Source, func(), error) {
	noop := func() {}
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)
	}

	var form mediaForm
	if err := c.ShouldBind(&form); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, media.Source{}, noop, services.Validation(media.ErrTooLarge.Error())
		}
		return nil, media.Source{}, noop, services.Validation("Invalid request body")
	}

	src := media.Source{Data: form.MediaURL}
	fh, err := c.FormFile("media")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			return nil, media.Source{}, noop, services.Internal("open uploaded file", err)
		}
		return &form, media.Source{Reader: f, Filename: fh.Filename, Size: fh.Size}, func() { f.Close() }, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return &form, src, noop, nil
	}
	return nil, media.Source{}, noop, services.Validation("Invalid media upload")
}
