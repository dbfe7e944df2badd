package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// handleChat is the demo chat endpoint: a keyword responder standing in for
// the eventual assistant.
func (s *Server) handleChat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": demoReply(req.Message)})
}

func demoReply(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "schedule") || strings.Contains(msg, "일정") || strings.Contains(msg, "what's on my"):
		return "Today: 10:00 Team Sync, 14:00 Design Review. (Demo data)"
	case strings.Contains(msg, "help"):
		return `You can ask: "What's on my schedule today?", "Save a note: I learned X", or "Search knowledge: entropy".`
	case strings.Contains(msg, "note") || strings.Contains(msg, "learned"):
		return "Noted. (In a later lesson, this will save to your notes.)"
	default:
		return "Hello! I am your starter assistant. After this lesson, I will connect to your real calendar and knowledge."
	}
}
