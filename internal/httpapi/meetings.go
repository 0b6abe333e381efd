package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tutorhub/internal/auth"
	"tutorhub/internal/meeting"
)

type meetingRequest struct {
	Title        string                `json:"title" binding:"required"`
	Link         string                `json:"link"`
	StartsAt     time.Time             `json:"starts_at" binding:"required"`
	Participants []meeting.Participant `json:"participants"`
}

// CreateMeeting schedules a meeting owned by the caller.
func (h *Handler) CreateMeeting(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	var req meetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.meetings.Insert(c.Request.Context(), meeting.Meeting{
		OwnerID:      ownerID,
		Title:        req.Title,
		Link:         req.Link,
		StartsAt:     req.StartsAt,
		Participants: req.Participants,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, m)
}

// ListMeetings returns the caller's meetings.
func (h *Handler) ListMeetings(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	meetings, err := h.meetings.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetings": meetings})
}

// UpdateMeeting rewrites an owned meeting.
func (h *Handler) UpdateMeeting(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req meetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	err = h.meetings.Update(c.Request.Context(), ownerID, id, meeting.Meeting{
		Title:        req.Title,
		Link:         req.Link,
		StartsAt:     req.StartsAt,
		Participants: req.Participants,
	})
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteMeeting removes an owned meeting.
func (h *Handler) DeleteMeeting(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.meetings.Delete(c.Request.Context(), ownerID, id); err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// callerID extracts the caller's volunteer id from the token claims.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	claims, _ := auth.FromContext(c)
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid subject"})
		return primitive.NilObjectID, false
	}
	return id, true
}
