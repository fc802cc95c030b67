// Package constants defines system-wide constants for the CureLink backend.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type used for values stored in a request context.
type ContextKey string

const (
	// ContextKeyRequestID carries the per-request correlation identifier
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyAnonymousToken carries the resolved anonymous identity token
	ContextKeyAnonymousToken ContextKey = "anonymous_token"

	// ContextKeyAuthenticated marks a request that carries a valid session
	ContextKeyAuthenticated ContextKey = "authenticated"
)

// Gin context keys used by the HTTP middleware chain.
const (
	// GinKeyAnonymousIdentity holds the *service.ResolvedIdentity for the request
	GinKeyAnonymousIdentity = "anonymous_identity"

	// GinKeyAuthenticated holds a bool set by the session middleware
	GinKeyAuthenticated = "authenticated"

	// GinKeyRequestID holds the request correlation identifier
	GinKeyRequestID = "request_id"
)

// ================================================================================
// Quota Constants
// ================================================================================

// QuotaSignal identifies one of the two independent admission signals.
type QuotaSignal string

const (
	// QuotaSignalIdentity is the cookie-borne anonymous identity signal
	QuotaSignalIdentity QuotaSignal = "identity"

	// QuotaSignalOrigin is the hashed network-origin signal
	QuotaSignalOrigin QuotaSignal = "origin"
)

// DefaultSearchQuota is the number of searches an anonymous visitor may
// perform, shared by both signals.
const DefaultSearchQuota = 6

// FailurePolicy controls how a quota signal degrades when its store fails.
type FailurePolicy string

const (
	// FailOpen degrades a failed signal to "fully allowed"
	FailOpen FailurePolicy = "fail-open"

	// FailClosed degrades a failed signal to "denied"
	FailClosed FailurePolicy = "fail-closed"
)

// ================================================================================
// Anonymous Cookie Constants
// ================================================================================

const (
	// DefaultAnonymousCookieName is the cookie carrying the identity token
	DefaultAnonymousCookieName = "device_token"

	// AnonymousCookieTTL is the cookie lifetime issued on mint
	AnonymousCookieTTL = 365 * 24 * time.Hour
)

// CookieProfile enumerates deployment profiles for cookie attributes.
type CookieProfile string

const (
	// CookieProfileAuto derives Secure/SameSite from the request transport
	CookieProfileAuto CookieProfile = "auto"

	// CookieProfileLocalHTTP targets local development over plain HTTP
	CookieProfileLocalHTTP CookieProfile = "local-http"

	// CookieProfileSameOriginHTTPS targets same-origin HTTPS deployments
	CookieProfileSameOriginHTTPS CookieProfile = "same-origin-https"

	// CookieProfileCrossOriginHTTPS targets cross-origin HTTPS deployments
	CookieProfileCrossOriginHTTPS CookieProfile = "cross-origin-https"
)

// ================================================================================
// Network-Origin Constants
// ================================================================================

const (
	// OriginKeyPrefix prefixes every hashed-address key in the origin store
	OriginKeyPrefix = "origin:"

	// DevelopmentOriginSalt is the fallback salt used when no secret salt is
	// configured. Deployments must override it; startup logs a warning when
	// this value is in effect.
	DevelopmentOriginSalt = "curelink-dev-salt"
)

// ================================================================================
// Audit Event Constants
// ================================================================================

// AuditEventType classifies audit events emitted by the quota subsystem.
type AuditEventType string

const (
	// AuditEventIdentityMinted records issuance of a new anonymous identity
	AuditEventIdentityMinted AuditEventType = "identity.minted"

	// AuditEventSearchPerformed records an admitted, dispatched search
	AuditEventSearchPerformed AuditEventType = "search.performed"

	// AuditEventQuotaDenied records a denied search admission
	AuditEventQuotaDenied AuditEventType = "quota.denied"
)
