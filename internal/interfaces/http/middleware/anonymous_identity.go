package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/curelink/curelink/internal/domain/models"
	domainservice "github.com/curelink/curelink/internal/domain/service"
	"github.com/curelink/curelink/pkg/constants"
	"github.com/curelink/curelink/pkg/logger"
)

// AnonymousIdentity resolves the anonymous identity for unauthenticated
// requests and issues the identity cookie. A request without a valid
// cookie gets exactly one Set-Cookie; a request presenting a valid token
// gets none. Authenticated requests skip resolution entirely.
func AnonymousIdentity(
	resolver domainservice.IdentityResolver,
	audit domainservice.AuditService,
	policy CookiePolicy,
	log logger.Logger,
) gin.HandlerFunc {
	log = log.WithComponent("anonymous_identity")
	return func(c *gin.Context) {
		if c.GetBool(constants.GinKeyAuthenticated) {
			c.Next()
			return
		}

		cookieToken := ""
		if cookie, err := c.Request.Cookie(policy.Name); err == nil {
			cookieToken = cookie.Value
		}

		token, minted := resolver.Resolve(c.Request.Context(), cookieToken)

		if minted {
			cookie := policy.Build(token, secureTransport(c.Request))
			c.Writer.Header().Add("Set-Cookie", cookie.String())

			event := models.NewAuditEvent(constants.AuditEventIdentityMinted)
			event.Token = token
			if id, ok := requestID(c); ok {
				event.RequestID = id
			}
			if err := audit.LogEvent(c.Request.Context(), event); err != nil {
				log.Warn(c.Request.Context(), "failed to audit identity mint",
					logger.Error(err),
				)
			}
		}

		identity := &domainservice.ResolvedIdentity{Token: token, Minted: minted}
		c.Set(constants.GinKeyAnonymousIdentity, identity)
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyAnonymousToken, token)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ResolvedIdentityFrom returns the identity stashed by AnonymousIdentity,
// or nil on authenticated requests.
func ResolvedIdentityFrom(c *gin.Context) *domainservice.ResolvedIdentity {
	v, ok := c.Get(constants.GinKeyAnonymousIdentity)
	if !ok {
		return nil
	}
	identity, ok := v.(*domainservice.ResolvedIdentity)
	if !ok {
		return nil
	}
	return identity
}

func requestID(c *gin.Context) (string, bool) {
	id := c.GetString(constants.GinKeyRequestID)
	return id, id != ""
}
