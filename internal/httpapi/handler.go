package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutorhub/internal/auth"
	"tutorhub/internal/cloudinary"
	"tutorhub/internal/compliance"
	"tutorhub/internal/config"
	"tutorhub/internal/meeting"
	"tutorhub/internal/member"
	"tutorhub/internal/notification"
	"tutorhub/internal/volunteer"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	cfg        config.App
	volunteers *volunteer.Repository
	volSvc     *volunteer.Service
	members    *member.Repository
	memberSvc  *member.Service
	meetings   *meeting.Repository
	notifs     *notification.Repository
	compliance *compliance.Service
	cloud      *cloudinary.Client // nil if Cloudinary not configured
	logger     *zap.Logger
}

// New creates a handler.
func New(
	cfg config.App,
	volunteers *volunteer.Repository,
	volSvc *volunteer.Service,
	members *member.Repository,
	memberSvc *member.Service,
	meetings *meeting.Repository,
	notifs *notification.Repository,
	complianceSvc *compliance.Service,
	cloud *cloudinary.Client,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		cfg:        cfg,
		volunteers: volunteers,
		volSvc:     volSvc,
		members:    members,
		memberSvc:  memberSvc,
		meetings:   meetings,
		notifs:     notifs,
		compliance: complianceSvc,
		cloud:      cloud,
		logger:     logger,
	}
}

// Register wires every route onto the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/v1/auth/login", h.Login)
	r.POST("/v1/join-requests", h.SubmitJoinRequest)

	authed := r.Group("/v1", auth.RequireAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))

	authed.POST("/lectures", h.SubmitLecture)
	authed.GET("/lectures", h.ListOwnLectures)

	authed.GET("/notifications", h.ListNotifications)
	authed.POST("/notifications/:id/read", h.MarkNotificationRead)

	authed.POST("/meetings", h.CreateMeeting)
	authed.GET("/meetings", h.ListMeetings)
	authed.PUT("/meetings/:id", h.UpdateMeeting)
	authed.DELETE("/meetings/:id", h.DeleteMeeting)

	authed.POST("/uploads", h.UploadImage)

	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/join-requests", h.ListJoinRequests)
	admin.POST("/join-requests/:id/approve", h.ApproveJoinRequest)
	admin.POST("/join-requests/:id/reject", h.RejectJoinRequest)
	admin.GET("/compliance/low-lecture-members", h.LowLectureMembers)

	staff := authed.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleLeader))
	staff.GET("/members", h.ListMembers)
	staff.GET("/members/:id", h.GetMember)
	staff.POST("/members/:id/students", h.AddStudent)
	staff.DELETE("/members/:id/students/:email", h.RemoveStudent)
	staff.PUT("/members/:id/students/:email/subjects", h.SetStudentSubjects)
}

// Healthz belongs to the API binary (it also checks redis/mongo) and is wired
// there; handlers here only cover domain routes.

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
