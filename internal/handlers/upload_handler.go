package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/danielrjepsen/Nory-sub001/internal/apiclient"
	"github.com/danielrjepsen/Nory-sub001/internal/logger"
	"github.com/danielrjepsen/Nory-sub001/internal/response"
	"github.com/danielrjepsen/Nory-sub001/internal/validation"
)

// MaxUploadSize caps one uploaded file
const MaxUploadSize = 50 << 20

// Uploader forwards guest files to the event backend
type Uploader interface {
	UploadPhoto(ctx context.Context, eventID, fileName string, categoryID *string, content io.Reader) error
}

// UploadHandler forwards guest files posted to the display to the event backend
type UploadHandler struct {
	eventID  string
	uploader Uploader
	log      *log.Logger
}

func NewUploadHandler(eventID string, uploader Uploader) *UploadHandler {
	return &UploadHandler{
		eventID:  eventID,
		uploader: uploader,
		log:      logger.Handler("upload"),
	}
}

// Upload handles POST /api/v1/slideshow/uploads with a multipart "file" field
// and an optional "categoryId".
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize+1<<20)

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequestError(c, "file is required")
		return
	}
	if file.Size > MaxUploadSize {
		response.BadRequestError(c, "file is too large")
		return
	}
	if err := validation.ValidateText(file.Filename, validation.MaxNameLength, "file name"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	var categoryID *string
	if id := c.PostForm("categoryId"); id != "" {
		if err := validation.ValidateID(id, "categoryId"); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		categoryID = &id
	}

	content, err := file.Open()
	if err != nil {
		response.BadRequestError(c, "file could not be read")
		return
	}
	defer content.Close()

	if err := h.uploader.UploadPhoto(c.Request.Context(), h.eventID, file.Filename, categoryID, content); err != nil {
		h.log.Error("Upload failed", "file", file.Filename, "error", err)
		if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError {
			response.ErrorResponseWithMessage(c, apiErr.Status, apiErr.Message)
			return
		}
		response.BadGatewayError(c, "Upload could not be delivered")
		return
	}

	h.log.Info("Photo uploaded", "file", file.Filename, "size", file.Size)
	response.SuccessResponse(c, http.StatusCreated, "uploaded", gin.H{"fileName": file.Filename})
}
