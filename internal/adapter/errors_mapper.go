package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

func mapHTTPError(op string, resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}

	kind, sentinel := KindUnknown, error(nil)
	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized:
		kind, sentinel = KindAuth, ErrUnauthorized
	case code == http.StatusForbidden:
		kind, sentinel = KindAuth, ErrForbidden
	case code == http.StatusNotFound:
		kind, sentinel = KindNotFound, ErrNotFound
	case code == http.StatusConflict, code == http.StatusPreconditionFailed:
		kind, sentinel = KindConflict, ErrVersionConflict
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		kind, sentinel = KindValidation, ErrBadRequest
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout, code >= http.StatusInternalServerError:
		kind, sentinel = KindTransient, ErrServerError
	default:
		return &RemoteError{Kind: KindUnknown, StatusCode: code, Op: op, Err: fmt.Errorf("http %d: %s", code, body)}
	}

	return &RemoteError{Kind: kind, StatusCode: resp.StatusCode(), Op: op, Err: fmt.Errorf("%w: %s", sentinel, body)}
}
