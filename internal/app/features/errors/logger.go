package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/yelpcamp/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type errorPageData struct {
	viewdata.BaseVM
	Status  int
	Message string
}

// ErrorLogger logs a failed request and renders the central error page.
// HTML clients get the "error" template; everyone else gets plain text.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger writing to logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

// LogServerError logs at error level and renders a 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg, requestFields(r, err)...)
	e.Render(w, r, http.StatusInternalServerError, userMsg, backURL)
}

// LogBadRequest logs at warn level and renders a 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, requestFields(r, err)...)
	e.Render(w, r, http.StatusBadRequest, userMsg, backURL)
}

// LogForbidden logs at warn level and renders a 403 with userMsg.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, requestFields(r, err)...)
	e.Render(w, r, http.StatusForbidden, userMsg, backURL)
}

// Write is the central handler for errors returned by actions. HTTPErrors
// render with their own status and message; anything else is logged as a
// server error and shown as a generic 500.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, err error, backURL string) {
	var he *HTTPError
	if !stderrors.As(err, &he) {
		e.LogServerError(w, r, "request failed", err, "Something went wrong.", backURL)
		return
	}
	status := StatusOf(err)
	if status >= 500 {
		e.log.Error("request failed", requestFields(r, err)...)
	} else {
		e.log.Info("request rejected", append(requestFields(r, err), zap.Int("status", status))...)
	}
	e.Render(w, r, status, he.Message, backURL)
}

// Render writes the error page without logging.
func (e *ErrorLogger) Render(w http.ResponseWriter, r *http.Request, status int, msg, backURL string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	if !wantsHTML(r) {
		http.Error(w, msg, status)
		return
	}
	if backURL == "" {
		backURL = "/campgrounds"
	}
	// Build the view model first: popping flashes sets a cookie, which
	// must happen before the status line is written.
	data := errorPageData{
		BaseVM:  viewdata.NewBaseVM(w, r, http.StatusText(status), backURL),
		Status:  status,
		Message: msg,
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error", data)
}

// NotFound handles unknown routes.
func (e *ErrorLogger) NotFound(w http.ResponseWriter, r *http.Request) {
	e.Render(w, r, http.StatusNotFound, "Page not found", "/")
}

// MethodNotAllowed handles known routes hit with the wrong method.
func (e *ErrorLogger) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	e.Render(w, r, http.StatusMethodNotAllowed, "", "/")
}

// Recoverer turns a panic in a handler into a logged 500. http.ErrAbortHandler
// is re-panicked so the server can abort the connection.
func (e *ErrorLogger) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			e.log.Error("panic serving request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("panic", fmt.Sprint(rec)),
				zap.ByteString("stack", debug.Stack()))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}

func requestFields(r *http.Request, err error) []zap.Field {
	f := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		f = append(f, zap.Error(err))
	}
	return f
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
