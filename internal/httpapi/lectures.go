package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tutorhub/internal/auth"
	"tutorhub/internal/volunteer"
)

// SubmitLecture records a delivered lecture for the caller.
func (h *Handler) SubmitLecture(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	volunteerID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid subject"})
		return
	}

	var req struct {
		Name         string `json:"name" binding:"required"`
		Link         string `json:"link"`
		Subject      string `json:"subject" binding:"required"`
		StudentEmail string `json:"student_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	lec, err := h.volSvc.SubmitLecture(c.Request.Context(), volunteerID,
		req.Name, req.Link, req.Subject, req.StudentEmail)
	if err != nil {
		switch {
		case errors.Is(err, volunteer.ErrInvalidLecture):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, volunteer.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, lec)
}

// ListOwnLectures returns the caller's lecture history.
func (h *Handler) ListOwnLectures(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	volunteerID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid subject"})
		return
	}
	v, err := h.volunteers.GetByID(c.Request.Context(), volunteerID)
	if err != nil {
		if errors.Is(err, volunteer.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lectures": v.Lectures, "lecture_count": v.LectureCount})
}
