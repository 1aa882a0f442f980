package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/danielrjepsen/Nory-sub001/internal/feed"
	"github.com/danielrjepsen/Nory-sub001/internal/logger"
	"github.com/danielrjepsen/Nory-sub001/internal/response"
	"github.com/danielrjepsen/Nory-sub001/internal/shell"
	"github.com/danielrjepsen/Nory-sub001/internal/slideshow"
	"github.com/danielrjepsen/Nory-sub001/internal/validation"
)

const maxReasonLength = 200

// Engine is the slideshow surface exposed over HTTP
type Engine interface {
	View() slideshow.View
	Next() bool
	Previous() bool
	Pause() bool
	Play() bool
	TogglePlay() bool
	SetSpeed(d time.Duration) bool
	SelectCategory(ctx context.Context, categoryID *string) error
	Refresh(ctx context.Context)
	VideoStarted(photoID string) bool
	VideoEnded(photoID string) bool
	MediaFailed(photoID, reason string) bool
	AddHeart(h feed.Heart) (feed.FloatingHeart, bool)
	AddActivity(a feed.Activity) feed.Activity
	SetAmbient(enabled bool)
}

type SlideshowHandler struct {
	engine Engine
	log    *log.Logger
}

func NewSlideshowHandler(engine Engine) *SlideshowHandler {
	return &SlideshowHandler{
		engine: engine,
		log:    logger.Handler("slideshow"),
	}
}

// GetFrame handles GET /api/v1/slideshow/frame
func (h *SlideshowHandler) GetFrame(c *gin.Context) {
	response.OK(c, shell.Compose(h.engine.View()))
}

// GetState handles GET /api/v1/slideshow/state
func (h *SlideshowHandler) GetState(c *gin.Context) {
	response.OK(c, h.engine.View())
}

// Next handles POST /api/v1/slideshow/next
func (h *SlideshowHandler) Next(c *gin.Context) {
	h.playback(c, h.engine.Next())
}

// Previous handles POST /api/v1/slideshow/previous
func (h *SlideshowHandler) Previous(c *gin.Context) {
	h.playback(c, h.engine.Previous())
}

// Play handles POST /api/v1/slideshow/play
func (h *SlideshowHandler) Play(c *gin.Context) {
	h.playback(c, h.engine.Play())
}

// Pause handles POST /api/v1/slideshow/pause
func (h *SlideshowHandler) Pause(c *gin.Context) {
	h.playback(c, h.engine.Pause())
}

// Toggle handles POST /api/v1/slideshow/toggle
func (h *SlideshowHandler) Toggle(c *gin.Context) {
	h.playback(c, h.engine.TogglePlay())
}

func (h *SlideshowHandler) playback(c *gin.Context, changed bool) {
	message := "unchanged"
	if changed {
		message = "updated"
	}
	response.SuccessResponse(c, http.StatusOK, message, h.engine.View().Playback)
}

// Refresh handles POST /api/v1/slideshow/refresh, the retry action of the
// error and empty screens
func (h *SlideshowHandler) Refresh(c *gin.Context) {
	h.engine.Refresh(c.Request.Context())
	view := h.engine.View()
	if !view.Online {
		h.log.Warn("Refresh left the display offline")
		response.ServiceUnavailableError(c, "Event service unavailable, try again shortly")
		return
	}
	response.OK(c, shell.Compose(view))
}

// SetAmbient handles PUT /api/v1/slideshow/ambient. The body is {"enabled": bool}.
func (h *SlideshowHandler) SetAmbient(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(body) {
		response.BadRequestError(c, "Invalid request payload")
		return
	}
	enabled := gjson.GetBytes(body, "enabled")
	if enabled.Type != gjson.True && enabled.Type != gjson.False {
		response.BadRequestError(c, "enabled must be a boolean")
		return
	}

	h.engine.SetAmbient(enabled.Bool())
	response.OK(c, h.engine.View().Ambient)
}

// SetSpeed handles PUT /api/v1/slideshow/speed. The body is {"speed": ...}
// with a preset name, a duration string or milliseconds.
func (h *SlideshowHandler) SetSpeed(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(body) {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	raw := gjson.GetBytes(body, "speed")
	if !raw.Exists() {
		response.BadRequestError(c, "speed is required")
		return
	}
	speed, err := slideshow.ParseSpeed(raw.String())
	if err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	h.playback(c, h.engine.SetSpeed(speed))
}

type selectCategoryRequest struct {
	CategoryID *string `json:"categoryId"`
}

// SelectCategory handles PUT /api/v1/slideshow/category. A null or empty id
// shows all categories.
func (h *SlideshowHandler) SelectCategory(c *gin.Context) {
	var req selectCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	categoryID := req.CategoryID
	if categoryID != nil && strings.TrimSpace(*categoryID) == "" {
		categoryID = nil
	}
	if categoryID != nil {
		if err := validation.ValidateID(*categoryID, "categoryId"); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
	}

	if err := h.engine.SelectCategory(c.Request.Context(), categoryID); err != nil {
		if errors.Is(err, slideshow.ErrUnknownCategory) {
			response.NotFoundError(c, err.Error())
			return
		}
		h.log.Error("Failed to select category", "error", err)
		response.InternalServerError(c, "Failed to select category")
		return
	}
	response.OK(c, h.engine.View().Playback)
}

type mediaEventRequest struct {
	Reason string `json:"reason"`
}

// MediaStarted handles POST /api/v1/slideshow/media/:photoId/started
func (h *SlideshowHandler) MediaStarted(c *gin.Context) {
	h.mediaEvent(c, func(id string, _ mediaEventRequest) bool { return h.engine.VideoStarted(id) })
}

// MediaEnded handles POST /api/v1/slideshow/media/:photoId/ended
func (h *SlideshowHandler) MediaEnded(c *gin.Context) {
	h.mediaEvent(c, func(id string, _ mediaEventRequest) bool { return h.engine.VideoEnded(id) })
}

// MediaFailed handles POST /api/v1/slideshow/media/:photoId/failed
func (h *SlideshowHandler) MediaFailed(c *gin.Context) {
	h.mediaEvent(c, func(id string, req mediaEventRequest) bool { return h.engine.MediaFailed(id, req.Reason) })
}

func (h *SlideshowHandler) mediaEvent(c *gin.Context, apply func(string, mediaEventRequest) bool) {
	photoID := c.Param("photoId")
	if err := validation.ValidateID(photoID, "photoId"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	var req mediaEventRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, "Invalid request payload")
			return
		}
	}
	if err := validation.ValidateText(req.Reason, maxReasonLength, "reason"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	if !apply(photoID, req) {
		response.ConflictError(c, slideshow.ErrUnknownPhoto.Error())
		return
	}
	response.OK(c, h.engine.View().Playback)
}

type heartRequest struct {
	ID       string `json:"id" binding:"required"`
	UserName string `json:"userName"`
}

// AddHeart handles POST /api/v1/slideshow/hearts
func (h *SlideshowHandler) AddHeart(c *gin.Context) {
	var req heartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}
	if err := validation.ValidateID(req.ID, "id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := validation.ValidateText(req.UserName, validation.MaxNameLength, "userName"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	heart, accepted := h.engine.AddHeart(feed.Heart{ID: req.ID, UserName: req.UserName})
	if !accepted {
		response.SuccessResponse(c, http.StatusOK, "duplicate", nil)
		return
	}
	response.SuccessResponse(c, http.StatusAccepted, "accepted", heart)
}

type activityRequest struct {
	Type     string `json:"type"`
	UserName string `json:"userName"`
	Message  string `json:"message" binding:"required"`
}

var postableActivities = map[feed.ActivityType]struct{}{
	feed.ActivityUpload:  {},
	feed.ActivityJoin:    {},
	feed.ActivityMessage: {},
}

// AddActivity handles POST /api/v1/slideshow/activities
func (h *SlideshowHandler) AddActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	kind := feed.ActivityType(req.Type)
	if kind == "" {
		kind = feed.ActivityMessage
	}
	if _, ok := postableActivities[kind]; !ok {
		response.BadRequestError(c, "unsupported activity type")
		return
	}
	if err := validation.ValidateText(req.Message, validation.MaxMessageLength, "message"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := validation.ValidateText(req.UserName, validation.MaxNameLength, "userName"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	a := h.engine.AddActivity(feed.Activity{Type: kind, UserName: req.UserName, Message: req.Message})
	response.SuccessResponse(c, http.StatusCreated, "created", a)
}
