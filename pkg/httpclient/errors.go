package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 20

// envelopeError mirrors the httputil.ErrorResponse shape.
type envelopeError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// graphqlErrors mirrors the error list a GraphQL server returns when it
// rejects a document before execution (parse or validation failures).
type graphqlErrors struct {
	Errors []struct {
		Message    string `json:"message"`
		Extensions struct {
			Code string `json:"code"`
		} `json:"extensions"`
	} `json:"errors"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError. Both the REST error envelope and the GraphQL error
// list are understood; anything else keeps the status and raw body.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	var env envelopeError
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		return mapStatus(resp.StatusCode, env.Error.Code, env.Error.Message, upstream)
	}

	var gql graphqlErrors
	if json.Unmarshal(body, &gql) == nil && len(gql.Errors) > 0 {
		msgs := make([]string, 0, len(gql.Errors))
		for _, e := range gql.Errors {
			msgs = append(msgs, e.Message)
		}
		return mapStatus(resp.StatusCode, gql.Errors[0].Extensions.Code, strings.Join(msgs, "; "), upstream)
	}

	return mapStatus(resp.StatusCode, "", strings.TrimSpace(string(body)), upstream)
}

// byStatus builds the application error for statuses with a fixed meaning.
var byStatus = map[int]func(string) *apperrors.AppError{
	http.StatusBadRequest:          apperrors.InvalidInput,
	http.StatusUnprocessableEntity: apperrors.InvalidInput,
	http.StatusUnauthorized:        apperrors.Unauthorized,
	http.StatusForbidden:           apperrors.Forbidden,
	http.StatusConflict:            apperrors.Conflict,
	http.StatusGone:                apperrors.Gone,
	http.StatusServiceUnavailable:  apperrors.ServiceUnavailable,
	http.StatusNotFound: func(msg string) *apperrors.AppError {
		return &apperrors.AppError{Code: "NOT_FOUND", Message: msg, Status: http.StatusNotFound, Err: apperrors.ErrNotFound}
	},
}

// mapStatus prefixes message with upstream and picks the error kind from
// status. Other 5xx become upstream failures; any remaining status is passed
// through with the upstream's own code.
func mapStatus(status int, code, message, upstream string) error {
	msg := upstream + ": " + message
	if message == "" {
		msg = fmt.Sprintf("%s returned status %d", upstream, status)
	}

	if build, ok := byStatus[status]; ok {
		return build(msg)
	}
	if status >= http.StatusInternalServerError {
		return apperrors.Upstream(msg, fmt.Errorf("status %d (%s)", status, code))
	}
	return &apperrors.AppError{Code: code, Message: msg, Status: status}
}
