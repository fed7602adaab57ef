package server

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/repairdesk/internal/invoice/domain"
	"github.com/smallbiznis/repairdesk/internal/invoice/render"
	"github.com/smallbiznis/repairdesk/internal/printsettings"
	publicinvoicedomain "github.com/smallbiznis/repairdesk/internal/publicinvoice/domain"
	"github.com/smallbiznis/repairdesk/pkg/db"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
	ErrInternal       = errors.New("internal_error")
)

// errorPayload is the JSON error body: {"success":false,"error":...,"details":...}.
type errorPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// errorClass groups the status code, error type and localized labels of a failure.
type errorClass struct {
	Status     int
	Type       string
	TitleKey   string
	MessageKey string
}

var (
	classBadRequest   = errorClass{http.StatusBadRequest, "bad_request", "badRequestTitle", "badRequestMsg"}
	classUnauthorized = errorClass{http.StatusUnauthorized, "unauthorized", "unauthorized", "unauthorized"}
	classForbidden    = errorClass{http.StatusForbidden, "forbidden", "forbiddenTitle", "forbiddenMessage"}
	classNotFound     = errorClass{http.StatusNotFound, "not_found", "notFoundTitle", "notFoundMessage"}
	classRateLimited  = errorClass{http.StatusTooManyRequests, "rate_limited", "rateLimitTitle", "rateLimitMessage"}
	classUnavailable  = errorClass{http.StatusServiceUnavailable, "service_unavailable", "serverErrorTitle", "rateLimitMessage"}
	classInternal     = errorClass{http.StatusInternalServerError, "internal_error", "serverErrorTitle", ""}
)

func classify(err error) errorClass {
	switch {
	case err == nil:
		return classInternal
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, invoicedomain.ErrInvalidInvoiceID),
		errors.Is(err, publicinvoicedomain.ErrMissingParams),
		errors.Is(err, publicinvoicedomain.ErrInvalidRepairID),
		errors.Is(err, printsettings.ErrInvalidDocument):
		return classBadRequest
	case errors.Is(err, ErrUnauthorized):
		return classUnauthorized
	case errors.Is(err, publicinvoicedomain.ErrPhoneMismatch):
		return classForbidden
	case isNotFoundError(err):
		return classNotFound
	case errors.Is(err, ErrRateLimited):
		return classRateLimited
	case db.IsTransient(err):
		return classUnavailable
	default:
		return classInternal
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, publicinvoicedomain.ErrRepairNotFound),
		errors.Is(err, publicinvoicedomain.ErrInvoiceNotLinked),
		errors.Is(err, publicinvoicedomain.ErrRepairMismatch),
		db.IsNotFound(err):
		return true
	default:
		return false
	}
}

// mapError builds the JSON response for err. Client errors carry their code;
// server errors carry the underlying message as details.
func mapError(err error) (int, errorPayload) {
	class := classify(err)
	payload := errorPayload{Error: class.Type}
	if err != nil && (class.Status == http.StatusBadRequest || class.Status == http.StatusInternalServerError) {
		payload.Details = err.Error()
	}
	return class.Status, payload
}

func classifyErrorForLog(err error) (string, string) {
	class := classify(err)
	if err == nil {
		return class.Type, ""
	}
	return class.Type, err.Error()
}

// ErrorHandlingMiddleware renders errors recorded with AbortWithError as JSON.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if status == http.StatusTooManyRequests {
			c.Header("Retry-After", retryAfterHeader(c))
		}
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

const errorPageTemplate = `<!doctype html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; font-family: "Segoe UI", Tahoma, Arial, sans-serif; background: #f7f9fc; color: #1a1f36; }
    .error { max-width: 520px; margin: 80px auto; background: #ffffff; border: 1px solid #e3e8ee; border-radius: 6px; padding: 24px; text-align: center; }
    .error h1 { font-size: 20px; margin: 0 0 8px; }
    .error p { color: #697386; margin: 0; }
    .error pre { text-align: start; white-space: pre-wrap; background: #fff5f5; color: #9b1c1c; padding: 8px; border-radius: 4px; margin-top: 12px; }
  </style>
</head>
<body>
  <div class="error">
    <h1>{{.Title}}</h1>
    {{with .Message}}<p>{{.}}</p>{{end}}
    {{with .Detail}}<pre>{{.}}</pre>{{end}}
  </div>
</body>
</html>
`

var errorPage = template.Must(template.New("error").Parse(errorPageTemplate))

type errorPageData struct {
	Lang    string
	Dir     string
	Title   string
	Message string
	Detail  string
}

// renderErrorPage writes the localized HTML page for err.
func renderErrorPage(c *gin.Context, lang string, err error) {
	class := classify(err)
	labels := render.LabelsFor(lang)

	data := errorPageData{
		Lang:  render.NormalizeLanguage(lang),
		Dir:   render.Direction(lang),
		Title: labels.Get(class.TitleKey),
	}
	if class.MessageKey != "" {
		data.Message = labels.Get(class.MessageKey)
	}
	if class.Status == http.StatusInternalServerError && err != nil {
		data.Detail = err.Error()
	}

	var buf bytes.Buffer
	if execErr := errorPage.Execute(&buf, data); execErr != nil {
		c.String(class.Status, "%s: %s", data.Title, data.Detail)
		return
	}
	if class.Status == http.StatusTooManyRequests {
		c.Header("Retry-After", retryAfterHeader(c))
	}
	c.Header("Cache-Control", "no-store")
	c.Data(class.Status, "text/html; charset=utf-8", buf.Bytes())
}
