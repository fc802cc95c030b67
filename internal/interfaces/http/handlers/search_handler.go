// Package handlers contains the gin HTTP handlers of the quota
// subsystem.
package handlers

import (
	goerrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/curelink/curelink/internal/application/service"
	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/internal/domain/models"
	"github.com/curelink/curelink/internal/interfaces/http/middleware"
	"github.com/curelink/curelink/pkg/constants"
	"github.com/curelink/curelink/pkg/errors"
	"github.com/curelink/curelink/pkg/logger"
)

// SearchHandler serves the anonymous scholarly-search endpoints.
type SearchHandler struct {
	searchService *service.SearchAppService
	limit         *config.QuotaLimit
	logger        logger.Logger
}

// NewSearchHandler creates the search handler.
func NewSearchHandler(searchService *service.SearchAppService, limit *config.QuotaLimit, log logger.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		limit:         limit,
		logger:        log.WithComponent("search_handler"),
	}
}

// Search runs one quota-governed search.
// GET /api/v1/search?q=...
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		writeError(c, errors.ErrInvalidRequest("query parameter q is required"))
		return
	}

	if c.GetBool(constants.GinKeyAuthenticated) {
		results, err := h.searchService.SearchAuthenticated(c.Request.Context(), query)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
		return
	}

	token, clientAddr := h.requestSignals(c)
	resp, err := h.searchService.Search(c.Request.Context(), token, clientAddr, query)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeQuotaExceeded) && resp != nil {
			h.setQuotaHeaders(c, resp.Decision)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":             errors.ErrCodeQuotaExceeded,
				"error_description": "The anonymous search limit has been reached. Create a free account to continue searching.",
				"limit":             h.limit.Get(),
				"remaining":         0,
			})
			return
		}
		h.logger.Error(c.Request.Context(), "search failed", err,
			logger.String("query", models.NormalizeQuery(query)),
		)
		writeError(c, err)
		return
	}

	h.setQuotaHeaders(c, resp.Decision)
	c.JSON(http.StatusOK, gin.H{
		"results":   resp.Results,
		"remaining": resp.Decision.Remaining,
	})
}

// Quota reports the current admission decision without consuming it.
// GET /api/v1/quota
func (h *SearchHandler) Quota(c *gin.Context) {
	if c.GetBool(constants.GinKeyAuthenticated) {
		c.JSON(http.StatusOK, gin.H{
			"allowed": true,
			"metered": false,
		})
		return
	}

	token, clientAddr := h.requestSignals(c)
	decision := h.searchService.Quota(c.Request.Context(), token, clientAddr)

	h.setQuotaHeaders(c, decision)
	c.JSON(http.StatusOK, gin.H{
		"allowed":   decision.Allowed,
		"metered":   true,
		"limit":     h.limit.Get(),
		"remaining": decision.Remaining,
	})
}

// requestSignals extracts the two quota signals established by the
// middleware chain. An empty token means identity resolution degraded;
// the quota service treats it as a denying signal.
func (h *SearchHandler) requestSignals(c *gin.Context) (token, clientAddr string) {
	if identity := middleware.ResolvedIdentityFrom(c); identity != nil {
		token = identity.Token
	}
	return token, middleware.ClientAddress(c.Request)
}

func (h *SearchHandler) setQuotaHeaders(c *gin.Context, decision models.QuotaDecision) {
	c.Header("X-Quota-Limit", strconv.Itoa(h.limit.Get()))
	c.Header("X-Quota-Remaining", strconv.Itoa(decision.Remaining))
}

// writeError renders an error as the standard JSON error envelope.
func writeError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !goerrors.As(err, &appErr) {
		appErr = errors.ErrInternal("internal server error")
	}
	c.JSON(appErr.HTTPStatus, gin.H{
		"error":             appErr.Code,
		"error_description": appErr.Message,
	})
}
