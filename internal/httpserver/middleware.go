package httpserver

import (
	"net/http"
	"strings"

	"bakery-shop/internal/domain"
	"bakery-shop/internal/service/identity"
	"github.com/gin-gonic/gin"
)

const (
	customerCtxKey = "customer"
	sessionCtxKey  = "session_token"
)

// identityMiddleware attaches the authenticated customer (from a bearer
// token) and the anonymous session (from the cookie) to the request. A bearer
// token that does not validate is rejected outright.
func identityMiddleware(customers CustomerService, sessions *sessionCookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			cust, err := customers.LookupByToken(c.Request.Context(), token)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, failure("invalid access token"))
				return
			}
			c.Set(customerCtxKey, cust)
		}
		if token, ok := sessions.read(c); ok {
			c.Set(sessionCtxKey, token)
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func currentCustomer(c *gin.Context) (*domain.Customer, bool) {
	v, ok := c.Get(customerCtxKey)
	if !ok {
		return nil, false
	}
	cust, ok := v.(*domain.Customer)
	return cust, ok && cust != nil
}

func currentSession(c *gin.Context) string {
	return c.GetString(sessionCtxKey)
}

// caller builds the identity the cart engine sees. An authenticated customer
// always wins over the session cookie.
func caller(c *gin.Context) identity.Caller {
	if cust, ok := currentCustomer(c); ok {
		return identity.Caller{UserID: cust.ID}
	}
	return identity.Caller{SessionToken: currentSession(c)}
}

type sessionCookies struct {
	name string
	svc  SessionService
}

func (s *sessionCookies) read(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(s.name)
	if err != nil || raw == "" {
		return "", false
	}
	token, err := s.svc.Resume(raw)
	if err != nil {
		return "", false
	}
	s.write(c, token)
	return token, true
}

// ensure returns the request's session token, starting a session when there
// is none.
func (s *sessionCookies) ensure(c *gin.Context) string {
	if token := currentSession(c); token != "" {
		return token
	}
	token := s.svc.Issue()
	s.write(c, token)
	c.Set(sessionCtxKey, token)
	return token
}

func (s *sessionCookies) write(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, token, int(s.svc.TTL().Seconds()), "/", "", c.Request.TLS != nil, true)
}

func (s *sessionCookies) clear(c *gin.Context) {
	if token := currentSession(c); token != "" {
		s.svc.End(token)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, "", -1, "/", "", c.Request.TLS != nil, true)
}
