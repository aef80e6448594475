package apierr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const internalMessage = "internal server error"

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func Body(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

// Respond writes err as a JSON error body. Errors that are not APIErrors are
// logged with the request path and reported with a generic message only.
func Respond(c *gin.Context, err error) {
	var api *APIError
	if errors.As(err, &api) && api.Code != CodeInternal {
		c.JSON(ToHTTPStatus(api), Body(api.Code, api.Message))
		return
	}
	slog.ErrorContext(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"err", err,
	)
	c.JSON(http.StatusInternalServerError, Body(CodeInternal, internalMessage))
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Body(CodeInvalidArgument, msg))
}
