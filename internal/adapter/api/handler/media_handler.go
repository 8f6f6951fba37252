package handler

import (
	"github.com/labstack/echo/v4"

	"chatdash/internal/adapter/api/middleware"
	"chatdash/internal/usecase"
	"chatdash/pkg/errors"
	"chatdash/pkg/response"
)

type MediaHandler struct {
	mediaUseCase *usecase.MediaUseCase
}

func NewMediaHandler(mediaUseCase *usecase.MediaUseCase) *MediaHandler {
	return &MediaHandler{
		mediaUseCase: mediaUseCase,
	}
}

// UploadMedia stores the multipart "file" field and returns its public URL.
func (h *MediaHandler) UploadMedia(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("file is required", err))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read file", err))
	}
	defer src.Close()

	url, err := h.mediaUseCase.UploadMedia(
		c.Request().Context(),
		middleware.CurrentUser(c).ID,
		src,
		file.Header.Get("Content-Type"),
		file.Size,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{
		"url":  url,
		"name": file.Filename,
	})
}
