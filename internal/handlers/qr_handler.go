package handlers

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/danielrjepsen/Nory-sub001/internal/logger"
	"github.com/danielrjepsen/Nory-sub001/internal/response"
)

const (
	defaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024
)

// QRHandler renders the code guests scan to reach the upload page
type QRHandler struct {
	url string
	log *log.Logger
}

func NewQRHandler(remoteURL string) *QRHandler {
	return &QRHandler{url: remoteURL, log: logger.Handler("qr")}
}

// GetQRCode handles GET /api/v1/slideshow/qr.png?size=256
func (h *QRHandler) GetQRCode(c *gin.Context) {
	if h.url == "" {
		response.NotFoundError(c, "No remote URL configured")
		return
	}

	size := defaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minQRSize || n > maxQRSize {
			response.BadRequestError(c, "size must be between 128 and 1024")
			return
		}
		size = n
	}

	png, err := qrcode.Encode(h.url, qrcode.Medium, size)
	if err != nil {
		h.log.Error("Failed to encode QR code", "error", err)
		response.InternalServerError(c, "Failed to render QR code")
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
