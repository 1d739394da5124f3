package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Vikas210-dev/cyber-new/internal/domain"
	"github.com/Vikas210-dev/cyber-new/internal/http/middleware"
	"github.com/Vikas210-dev/cyber-new/internal/session"
	"github.com/Vikas210-dev/cyber-new/internal/upstream"
)

// ConsoleHandler proxies the console's data operations to the upstream
// API, passing the response envelope through with the upstream status.
type ConsoleHandler struct {
	Upstream *upstream.Client
	Logger   *zap.Logger
}

// NewConsoleHandler creates the proxy handler set.
func NewConsoleHandler(client *upstream.Client, logger *zap.Logger) *ConsoleHandler {
	return &ConsoleHandler{Upstream: client, Logger: logger}
}

type registerRequest struct {
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	MobileNo   string `json:"mobileNo" binding:"required"`
	UserName   string `json:"userName" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RoleID     int    `json:"roleId" binding:"required"`
	StateID    int    `json:"stateId" binding:"required"`
	DistrictID int    `json:"districtId" binding:"required"`
}

// Register creates a contact/agent account. This is the one proxied
// write with a gateway-side schema: the field set is the canonical
// register contract, so drift gets caught before it reaches upstream.
func (h *ConsoleHandler) Register(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_unavailable", "error_description": "Session middleware missing."})
		return
	}
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": err.Error()})
		return
	}
	h.relay(c, sess)(h.Upstream.Register(c.Request.Context(), sess, req))
}

func (h *ConsoleHandler) Profile(c *gin.Context) {
	h.proxy(c, h.Upstream.UserProfile)
}

func (h *ConsoleHandler) UpdateProfile(c *gin.Context) {
	h.proxyBody(c, h.Upstream.UpdateProfile)
}

func (h *ConsoleHandler) Users(c *gin.Context) {
	h.proxy(c, h.Upstream.Users)
}

func (h *ConsoleHandler) DeleteUser(c *gin.Context) {
	h.proxyID(c, h.Upstream.DeleteUser)
}

func (h *ConsoleHandler) Contacts(c *gin.Context) {
	h.proxy(c, h.Upstream.Contacts)
}

func (h *ConsoleHandler) CreateContact(c *gin.Context) {
	h.proxyBody(c, h.Upstream.CreateContact)
}

func (h *ConsoleHandler) UpdateContact(c *gin.Context) {
	h.proxyBody(c, h.Upstream.UpdateContact)
}

func (h *ConsoleHandler) DeleteContact(c *gin.Context) {
	h.proxyID(c, h.Upstream.DeleteContact)
}

func (h *ConsoleHandler) ContactDetails(c *gin.Context) {
	h.proxyID(c, h.Upstream.ContactDetails)
}

func (h *ConsoleHandler) Incidents(c *gin.Context) {
	h.proxy(c, h.Upstream.Incidents)
}

func (h *ConsoleHandler) CreateIncident(c *gin.Context) {
	h.proxyBody(c, h.Upstream.CreateIncident)
}

func (h *ConsoleHandler) UpdateIncident(c *gin.Context) {
	h.proxyBody(c, h.Upstream.UpdateIncident)
}

func (h *ConsoleHandler) DeleteIncident(c *gin.Context) {
	h.proxyID(c, h.Upstream.DeleteIncident)
}

func (h *ConsoleHandler) IncidentDetails(c *gin.Context) {
	h.proxyID(c, h.Upstream.IncidentDetails)
}

func (h *ConsoleHandler) Threats(c *gin.Context) {
	h.proxy(c, h.Upstream.Threats)
}

func (h *ConsoleHandler) CreateThreat(c *gin.Context) {
	h.proxyBody(c, h.Upstream.CreateThreat)
}

func (h *ConsoleHandler) UpdateThreat(c *gin.Context) {
	h.proxyBody(c, h.Upstream.UpdateThreat)
}

func (h *ConsoleHandler) DeleteThreat(c *gin.Context) {
	h.proxyID(c, h.Upstream.DeleteThreat)
}

func (h *ConsoleHandler) Reports(c *gin.Context) {
	h.proxy(c, h.Upstream.Reports)
}

func (h *ConsoleHandler) GenerateReport(c *gin.Context) {
	h.proxyBody(c, h.Upstream.GenerateReport)
}

func (h *ConsoleHandler) ReportDetails(c *gin.Context) {
	h.proxyID(c, h.Upstream.ReportDetails)
}

func (h *ConsoleHandler) States(c *gin.Context) {
	h.proxy(c, h.Upstream.States)
}

func (h *ConsoleHandler) Districts(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_unavailable", "error_description": "Session middleware missing."})
		return
	}
	h.relay(c, sess)(h.Upstream.Districts(c.Request.Context(), sess, c.Query("stateId")))
}

func (h *ConsoleHandler) Roles(c *gin.Context) {
	h.proxy(c, h.Upstream.Roles)
}

// ForgotPassword runs on the client token: no user is signed in yet.
func (h *ConsoleHandler) ForgotPassword(c *gin.Context) {
	h.proxyBody(c, h.Upstream.ForgotPassword)
}

func (h *ConsoleHandler) ResetPassword(c *gin.Context) {
	h.proxyBody(c, h.Upstream.ResetPassword)
}

func (h *ConsoleHandler) proxy(c *gin.Context, op func(ctx context.Context, sess *session.Manager) (int, domain.Envelope, error)) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_unavailable", "error_description": "Session middleware missing."})
		return
	}
	h.relay(c, sess)(op(c.Request.Context(), sess))
}

func (h *ConsoleHandler) proxyBody(c *gin.Context, op func(ctx context.Context, sess *session.Manager, payload any) (int, domain.Envelope, error)) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_unavailable", "error_description": "Session middleware missing."})
		return
	}
	raw, err := c.GetRawData()
	if err != nil || !json.Valid(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Request body must be valid JSON."})
		return
	}
	h.relay(c, sess)(op(c.Request.Context(), sess, json.RawMessage(raw)))
}

func (h *ConsoleHandler) proxyID(c *gin.Context, op func(ctx context.Context, sess *session.Manager, id string) (int, domain.Envelope, error)) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_unavailable", "error_description": "Session middleware missing."})
		return
	}
	h.relay(c, sess)(op(c.Request.Context(), sess, c.Param("id")))
}

// relay writes the upstream outcome to the browser. An upstream 401
// means the stored credential is dead: auth state is cleared and a
// typed session_expired error returned for the shell to act on. No
// ambient navigation happens here.
func (h *ConsoleHandler) relay(c *gin.Context, sess *session.Manager) func(int, domain.Envelope, error) {
	return func(status int, env domain.Envelope, err error) {
		if err != nil {
			if h.Logger != nil {
				h.Logger.Error("upstream call failed", zap.String("path", c.FullPath()), zap.Error(err))
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "upstream_unreachable", "error_description": "Failed to reach the helpline service."})
			return
		}
		if status == http.StatusUnauthorized {
			if clearErr := sess.ClearAuth(c.Request.Context()); clearErr != nil && h.Logger != nil {
				h.Logger.Warn("clear auth after upstream 401", zap.Error(clearErr))
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session_expired", "error_description": "Session expired. Sign in again."})
			return
		}
		c.JSON(status, env)
	}
}
