package http

import (
	"net/http"
	"time"

	"examship-quiz-service/internal/logger"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the REST endpoints and the live session socket.
func NewRouter(api *APIHandler, ws *WSHandler, log *logger.Logger) *gin.Engine {
	log = logger.OrNop(log)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/ws", gin.WrapF(ws.ServeWS))

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/chapters", api.Chapters)
		apiGroup.POST("/chapters/extract", api.ExtractChapters)
		apiGroup.GET("/leaderboard", api.Leaderboard)

		learners := apiGroup.Group("/learners/:id")
		{
			learners.GET("/progress", api.Progress)
			learners.GET("/history", api.History)
			learners.GET("/results/:quizId/review", api.Review)
		}
	}
	return router
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
