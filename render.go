package reviewcms

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// errorEnvelope is the content-API error shape:
// {"data":null,"error":{"status":404,"name":"NotFoundError","message":"..."}}.
type errorEnvelope struct {
	Data  any      `json:"data"`
	Error apiError `json:"error"`
}

type apiError struct {
	Status  int    `json:"status"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// writeError writes an error envelope with the given status code.
func writeError(c echo.Context, code int, message string) error {
	return c.JSON(code, errorEnvelope{
		Error: apiError{Status: code, Name: errorName(code), Message: message},
	})
}

func errorName(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "ValidationError"
	case http.StatusUnauthorized:
		return "UnauthorizedError"
	case http.StatusForbidden:
		return "ForbiddenError"
	case http.StatusNotFound:
		return "NotFoundError"
	case http.StatusMethodNotAllowed:
		return "MethodNotAllowedError"
	case http.StatusRequestEntityTooLarge:
		return "PayloadTooLargeError"
	case http.StatusTooManyRequests:
		return "RateLimitError"
	}
	if code >= 500 {
		return "InternalServerError"
	}
	return "ApplicationError"
}
