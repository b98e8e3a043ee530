package http

import (
	"net/http"

	"shipscan/internal/platform/net/http/bind"
)

// JSONHandler binds the body into T before calling fn. A returned Response
// is written as is, anything else is wrapped in a 200 envelope
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		return result(fn(r, in))
	})
}

// Call is JSONHandler for routes without a body
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response { return result(fn(r)) })
}

func result(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}
