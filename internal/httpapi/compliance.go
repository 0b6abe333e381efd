package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tutorhub/internal/compliance"
)

// LowLectureMembers answers the admin on-demand compliance query. Cached
// report when one exists for the current window, live read-only evaluation
// otherwise.
func (h *Handler) LowLectureMembers(c *gin.Context) {
	result, err := h.compliance.LowLectureMembers(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "evaluation failed",
			"error":   err.Error(),
		})
		return
	}

	members := result.Members
	if members == nil {
		members = []compliance.MemberResult{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "low lecture members computed",
		"members": members,
		"debug": gin.H{
			"totalUsersProcessed":    result.TotalProcessed,
			"weekStart":              result.WeekStart,
			"weekEnd":                result.WeekEnd,
			"membersWithLowLectures": len(members),
		},
	})
}
