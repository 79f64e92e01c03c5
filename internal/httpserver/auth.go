package httpserver

import (
	"net/http"

	customersvc "bakery-shop/internal/service/customer"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *handlers) startSession(c *gin.Context) {
	token := h.sessions.ensure(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "sessionId": token, "expiresIn": int(h.deps.SessionSvc.TTL().Seconds())})
}

func (h *handlers) signup(c *gin.Context) {
	var req customersvc.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("invalid request body"))
		return
	}
	cust, err := h.deps.CustomerSvc.Signup(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": cust})
}

// login authenticates and folds the caller's guest cart into the customer's
// cart. A failed merge does not fail the login; the guest cart stays intact.
func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("email and password are required"))
		return
	}
	session, err := h.deps.CustomerSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	merged := false
	if guest := currentSession(c); guest != "" {
		if err := h.deps.CartSvc.MergeGuestIntoUser(c.Request.Context(), guest, session.Customer.ID); err != nil {
			h.logger.Printf("http: login merge customer_id=%s error=%v", session.Customer.ID, err)
		} else {
			merged = true
			h.sessions.clear(c)
		}
	}

	body := h.tokenBody(session)
	body["cartMerged"] = merged
	c.JSON(http.StatusOK, body)
}

// refresh rotates the token pair. The old refresh token stops working.
func (h *handlers) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("refresh_token is required"))
		return
	}
	session, err := h.deps.CustomerSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.tokenBody(session))
}

func (h *handlers) tokenBody(session *customersvc.Session) gin.H {
	return gin.H{
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"token_type":    "Bearer",
		"expires_in":    h.deps.CustomerSvc.AccessTTLSeconds(),
		"customer":      session.Customer,
	}
}

func (h *handlers) logout(c *gin.Context) {
	if token := bearerToken(c.GetHeader("Authorization")); token != "" {
		if err := h.deps.CustomerSvc.Logout(c.Request.Context(), token); err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) me(c *gin.Context) {
	cust, ok := currentCustomer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, failure("missing bearer token"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": cust})
}
