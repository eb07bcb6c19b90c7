package handler

import "github.com/gin-gonic/gin"

// Register mounts the authenticated API on api.
func Register(api *gin.RouterGroup, sessions *SessionHandler, saved *SavedSessionHandler, jobs *JobHandler) {
	// Jobs
	api.GET("/jobs", jobs.ListJobs)
	api.GET("/jobs/:id", jobs.GetJob)

	// Sessions
	api.POST("/sessions", sessions.Create)
	api.GET("/sessions/:id", sessions.Get)
	api.DELETE("/sessions/:id", sessions.Delete)
	api.GET("/sessions/:id/document", sessions.Document)
	api.GET("/sessions/:id/export", sessions.Export)
	api.POST("/sessions/:id/analysis", sessions.Analyze)
	api.POST("/sessions/:id/matches", sessions.Match)
	api.PUT("/sessions/:id/target-job", sessions.SetTarget)
	api.DELETE("/sessions/:id/target-job", sessions.ClearTarget)
	api.POST("/sessions/:id/suggestions", sessions.Suggestions)

	// Editing
	api.POST("/sessions/:id/edits", sessions.ApplyEdit)
	api.POST("/sessions/:id/undo", sessions.Undo)
	api.POST("/sessions/:id/redo", sessions.Redo)
	api.GET("/sessions/:id/history", sessions.History)
	api.GET("/sessions/:id/diff", sessions.Diff)

	// Interview
	api.POST("/sessions/:id/interview", sessions.StartInterview)
	api.GET("/sessions/:id/interview", sessions.GetInterview)
	api.GET("/sessions/:id/interview/audio", sessions.QuestionAudio)
	api.POST("/sessions/:id/interview/answers", sessions.Answer)
	api.POST("/sessions/:id/interview/summary", sessions.InterviewSummary)

	// Cover letter
	api.POST("/sessions/:id/cover-letter", sessions.GenerateCoverLetter)
	api.GET("/sessions/:id/cover-letter", sessions.GetCoverLetter)
	api.POST("/sessions/:id/cover-letter/edits", sessions.EditCoverLetter)
	api.POST("/sessions/:id/cover-letter/undo", sessions.UndoCoverLetter)
	api.POST("/sessions/:id/cover-letter/redo", sessions.RedoCoverLetter)

	// Saved sessions
	api.POST("/sessions/:id/save", saved.Save)
	api.GET("/saved-sessions", saved.List)
	api.POST("/saved-sessions/:id/restore", saved.Restore)
	api.DELETE("/saved-sessions/:id", saved.Delete)
	api.GET("/saved-sessions/:id/upload", saved.Upload)
}
