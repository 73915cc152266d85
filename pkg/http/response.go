package http

import (
	"errors"
	"fmt"
	"net/http"

	applogger "FinSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope every endpoint answers with. A failed request
// carries Errors and no Data.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// ListDataResponse wraps a page of rows with the size of the full collection.
type ListDataResponse struct {
	Rows  interface{} `json:"rows"`
	Total int64       `json:"total"`
	Limit int         `json:"limit,omitempty"`
}

func reply(c echo.Context, status int, data, errs interface{}) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
		Errors:  errs,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return reply(c, http.StatusOK, data, nil)
}

// ListResponse writes the whole collection.
func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return reply(c, http.StatusOK, &ListDataResponse{Rows: rows, Total: total}, nil)
}

// PageResponse writes at most limit rows out of total.
func PageResponse(c echo.Context, rows interface{}, total int64, limit int) error {
	return reply(c, http.StatusOK, &ListDataResponse{Rows: rows, Total: total, Limit: limit}, nil)
}

func BadRequestResponse(c echo.Context, errs []ValidationError) error {
	return reply(c, http.StatusBadRequest, nil, errs)
}

// AppErrorResponse writes an *AppError with its own status; anything else is a 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalErrorf("Something went wrong").WithError(err)
	}
	return reply(c, appErr.Status, nil, []*AppError{appErr})
}

// ErrorHandler renders errors that escape a handler, such as unmatched routes
// or middleware rejections, in the same envelope as handler errors.
func ErrorHandler(l *applogger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			err = NewAppError(fmt.Sprintf("ERR_HTTP_%d", he.Code), "", fmt.Sprint(he.Message), he.Code)
		}
		if werr := AppErrorResponse(c, err); werr != nil {
			l.Warn("error response not written", applogger.Error(werr))
		}
	}
}
