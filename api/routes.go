package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/server/middleware"
)

// Register mounts the submission and status routes behind the API key
// check, and serves the upload directory under /uploads.
func (h *Handler) Register(r gin.IRouter, apiKey string) {
	r.Static("/uploads", h.deps.UploadDir)

	g := r.Group("", middleware.APIKey(middleware.APIKeyConfig{Key: apiKey}))
	g.POST("/transcribe_audio", h.TranscribeAudio)
	g.POST("/transcribe_video", h.TranscribeVideo)
	g.POST("/transcribe_youtube", h.TranscribeYouTube)
	g.GET("/status/:task_id", h.Status)
}
