package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tutorhub/internal/auth"
	"tutorhub/internal/member"
	"tutorhub/internal/volunteer"
)

// ---------- Join requests ----------

// SubmitJoinRequest files a public join request.
func (h *Handler) SubmitJoinRequest(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required,email"`
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.memberSvc.Submit(c.Request.Context(), req.Name, req.Email, req.Phone, req.Message)
	if err != nil {
		if errors.Is(err, member.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "a request for this email already exists"})
			return
		}
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListJoinRequests returns requests, optionally filtered by ?status=.
func (h *Handler) ListJoinRequests(c *gin.Context) {
	requests, err := h.members.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ApproveJoinRequest approves a pending request and provisions the account.
func (h *Handler) ApproveJoinRequest(c *gin.Context) {
	h.decideJoinRequest(c, h.memberSvc.Approve)
}

// RejectJoinRequest rejects a pending request.
func (h *Handler) RejectJoinRequest(c *gin.Context) {
	h.decideJoinRequest(c, h.memberSvc.Reject)
}

func (h *Handler) decideJoinRequest(c *gin.Context, decide func(context.Context, primitive.ObjectID) (member.Request, error)) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	req, err := decide(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, member.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, member.ErrNotPending):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, req)
}

// ---------- Members ----------

// ListMembers returns all volunteer accounts with role user.
func (h *Handler) ListMembers(c *gin.Context) {
	members, err := h.volunteers.ListByRole(c.Request.Context(), auth.RoleUser)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// GetMember returns one volunteer account.
func (h *Handler) GetMember(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	v, err := h.volunteers.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, volunteer.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

// AddStudent appends a student to a member's roster.
func (h *Handler) AddStudent(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Name     string                        `json:"name" binding:"required"`
		Email    string                        `json:"email" binding:"required,email"`
		Phone    string                        `json:"phone"`
		Grade    string                        `json:"grade"`
		Subjects []volunteer.SubjectAssignment `json:"subjects"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	v, err := h.volSvc.AddStudent(c.Request.Context(), id, volunteer.Student{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Grade:    req.Grade,
		Subjects: req.Subjects,
	})
	if err != nil {
		writeRosterError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// RemoveStudent drops a student from a member's roster.
func (h *Handler) RemoveStudent(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.volSvc.RemoveStudent(c.Request.Context(), id, c.Param("email")); err != nil {
		writeRosterError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetStudentSubjects replaces a student's subject assignments.
func (h *Handler) SetStudentSubjects(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Subjects []volunteer.SubjectAssignment `json:"subjects" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.volSvc.SetStudentSubjects(c.Request.Context(), id, c.Param("email"), req.Subjects); err != nil {
		writeRosterError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeRosterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, volunteer.ErrNotFound), errors.Is(err, volunteer.ErrStudentMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, volunteer.ErrStudentExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, volunteer.ErrInvalidStudent), errors.Is(err, volunteer.ErrInvalidMinimum):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
