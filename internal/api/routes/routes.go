package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/scribely/internal/api/handlers"
	"github.com/yoockh/scribely/internal/api/middleware"
)

type Deps struct {
	Transcript *handlers.TranscriptHandler
	Jobs       *handlers.JobHandler
	Notes      *handlers.NoteHandler

	Logger         *logrus.Logger
	MaxUploadBytes int64
	JWTSecret      string // empty disables auth
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/", d.Transcript.Health)
	r.GET("/health", d.Transcript.Health)

	intake := r.Group("/")
	intake.Use(middleware.BearerAuth(d.JWTSecret))

	intake.POST("/process", middleware.ValidateTranscript(d.Logger), d.Transcript.Process)
	intake.POST("/process-file", middleware.ValidateFileOrTranscript(d.MaxUploadBytes, d.Logger), d.Transcript.ProcessFile)

	intake.GET("/jobs/:job_id", d.Jobs.Get)
	intake.GET("/notes", d.Notes.List)
}
