package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "FinSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns a handler panic into a 500 that the server's error handler
// renders; the stack goes to the log only.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				l.Error("panic recovered",
					applogger.String("panic", fmt.Sprint(r)),
					applogger.String("route", c.Path()),
					applogger.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
					applogger.String("stack", string(debug.Stack())),
				)
				err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}()
			return next(c)
		}
	}
}
