// Package middleware contains the gin middleware chain of the quota
// subsystem: request correlation, tracing, session detection, and
// anonymous identity resolution with cookie issuance.
package middleware

import (
	"net/http"

	"github.com/curelink/curelink/pkg/constants"
)

// CookiePolicy builds the anonymous identity cookie under a deployment
// profile. The profile controls the SameSite and Secure attributes; the
// rest of the cookie shape is fixed.
type CookiePolicy struct {
	Name    string
	Profile constants.CookieProfile
}

// NewCookiePolicy creates a policy, falling back to defaults for empty
// configuration values.
func NewCookiePolicy(name, profile string) CookiePolicy {
	if name == "" {
		name = constants.DefaultAnonymousCookieName
	}
	p := constants.CookieProfile(profile)
	if p == "" {
		p = constants.CookieProfileAuto
	}
	return CookiePolicy{Name: name, Profile: p}
}

// Build returns the Set-Cookie payload for a freshly minted token.
// secureTransport reports whether the client connection arrived over
// HTTPS, directly or via a forwarding proxy. It only matters for the
// auto profile, which picks the strictest attributes the transport
// supports.
func (p CookiePolicy) Build(token string, secureTransport bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     p.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(constants.AnonymousCookieTTL.Seconds()),
		HttpOnly: true,
	}

	profile := p.Profile
	if profile == constants.CookieProfileAuto {
		if secureTransport {
			profile = constants.CookieProfileSameOriginHTTPS
		} else {
			profile = constants.CookieProfileLocalHTTP
		}
	}

	switch profile {
	case constants.CookieProfileCrossOriginHTTPS:
		// SameSite=None requires Secure, browsers drop it otherwise.
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Secure = true
	case constants.CookieProfileSameOriginHTTPS:
		cookie.SameSite = http.SameSiteLaxMode
		cookie.Secure = true
	default:
		cookie.SameSite = http.SameSiteLaxMode
	}

	return cookie
}
