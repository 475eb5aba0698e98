// Package response writes JSON bodies, error envelopes and the alert and
// pagination headers the kproduct client application reads.
package response

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/kproduct/config"
)

// Problem is the error body shared by every failing endpoint.
type Problem struct {
	Status     int               `json:"status"`
	Message    string            `json:"message,omitempty"`
	ErrorKey   string            `json:"errorKey,omitempty"`
	EntityName string            `json:"entityName,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// OK sends a 200 with v as the body.
func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Created sends a 201 with a Location header and v as the body.
func Created(w http.ResponseWriter, location string, v interface{}) {
	w.Header().Set("Location", location)
	JSON(w, http.StatusCreated, v)
}

// NoContent sends a 204 with no body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error sends a Problem carrying only a status and message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Problem{Status: status, Message: message})
}

// BadRequestAlert sends a 400 for a rejected write on entityName along with
// the failure alert headers.
func BadRequestAlert(w http.ResponseWriter, entityName, errorKey, message string) {
	FailureAlert(w.Header(), entityName, errorKey)
	JSON(w, http.StatusBadRequest, Problem{
		Status:     http.StatusBadRequest,
		Message:    message,
		ErrorKey:   errorKey,
		EntityName: entityName,
	})
}

// ValidationError sends a 400 with field-level messages.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusBadRequest, Problem{
		Status:   http.StatusBadRequest,
		Message:  "Validation failed",
		ErrorKey: "validation",
		Errors:   errs,
	})
}

func Unauthorized(w http.ResponseWriter) { Error(w, http.StatusUnauthorized, "Unauthorized") }
func Forbidden(w http.ResponseWriter)    { Error(w, http.StatusForbidden, "Forbidden") }
func NotFound(w http.ResponseWriter)     { Error(w, http.StatusNotFound, "Not found") }

// Conflict sends a 409 for entityName.
func Conflict(w http.ResponseWriter, entityName, message string) {
	FailureAlert(w.Header(), entityName, "referenced")
	JSON(w, http.StatusConflict, Problem{
		Status:     http.StatusConflict,
		Message:    message,
		ErrorKey:   "referenced",
		EntityName: entityName,
	})
}

// InternalError sends a 500 without leaking the cause.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "Internal server error")
}

// ─── Alert headers ───────────────────────────────────────────────────────────

func alertHeader() string  { return "X-" + config.AppName() + "-alert" }
func paramsHeader() string { return "X-" + config.AppName() + "-params" }
func errorHeader() string  { return "X-" + config.AppName() + "-error" }

// Alert sets the alert message and its parameter.
func Alert(h http.Header, message, param string) {
	h.Set(alertHeader(), message)
	h.Set(paramsHeader(), url.QueryEscape(param))
}

// CreationAlert marks a response as the creation of entityName with id param.
func CreationAlert(h http.Header, entityName, param string) {
	Alert(h, config.AppName()+"."+entityName+".created", param)
}

func UpdateAlert(h http.Header, entityName, param string) {
	Alert(h, config.AppName()+"."+entityName+".updated", param)
}

func DeletionAlert(h http.Header, entityName, param string) {
	Alert(h, config.AppName()+"."+entityName+".deleted", param)
}

// FailureAlert marks a response as a rejected write on entityName.
func FailureAlert(h http.Header, entityName, errorKey string) {
	h.Set(errorHeader(), "error."+errorKey)
	h.Set(paramsHeader(), entityName)
}

// ─── Pagination ──────────────────────────────────────────────────────────────

// Paginated sends items with X-Total-Count and Link headers built from the
// current request URL.
func Paginated(w http.ResponseWriter, r *http.Request, items interface{}, page, size int, total int64) {
	PaginationHeaders(w.Header(), RequestURL(r), page, size, total)
	OK(w, items)
}

// PaginationHeaders sets X-Total-Count and a Link header with next, prev,
// last and first relations, in that order.
func PaginationHeaders(h http.Header, base *url.URL, page, size int, total int64) {
	h.Set("X-Total-Count", strconv.FormatInt(total, 10))

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	last := totalPages - 1
	if last < 0 {
		last = 0
	}

	links := make([]string, 0, 4)
	if page < totalPages-1 {
		links = append(links, pageLink(base, page+1, size, "next"))
	}
	if page > 0 {
		links = append(links, pageLink(base, page-1, size, "prev"))
	}
	links = append(links,
		pageLink(base, last, size, "last"),
		pageLink(base, 0, size, "first"),
	)
	h.Set("Link", strings.Join(links, ","))
}

func pageLink(base *url.URL, page, size int, rel string) string {
	u := *base
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return "<" + u.String() + `>; rel="` + rel + `"`
}

// RequestURL rebuilds the absolute URL the client called.
func RequestURL(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}
}
