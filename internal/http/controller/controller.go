package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-manager/internal/apperror"
)

// Controller handles general HTTP requests.
type Controller struct {
	readiness http.Handler
	now       func() time.Time
}

// New creates a new Controller. readiness serves the /health/ready checks.
func New(readiness http.Handler) *Controller {
	return &Controller{
		readiness: readiness,
		now:       time.Now,
	}
}

// Health handles the liveness probe.
func (con *Controller) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": formatTime(con.now()),
	})
}

// Ready runs the readiness checks.
func (con *Controller) Ready(c *gin.Context) {
	con.readiness.ServeHTTP(c.Writer, c.Request)
}

// NotFound answers requests that match no route.
func (con *Controller) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:      true,
		Message:    "Endpoint not found",
		StatusCode: http.StatusNotFound,
	})
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error      bool           `json:"error"`
	Message    string         `json:"message"`
	StatusCode int            `json:"statusCode"`
	Details    map[string]any `json:"details,omitempty"`
}

// respondError writes err as an ErrorResponse. Anything that is not an
// *apperror.Error is reported as an internal error.
func respondError(c *gin.Context, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal(err)
	}
	_ = c.Error(err)
	c.JSON(appErr.StatusCode, ErrorResponse{
		Error:      true,
		Message:    appErr.Message,
		StatusCode: appErr.StatusCode,
		Details:    appErr.Details,
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
