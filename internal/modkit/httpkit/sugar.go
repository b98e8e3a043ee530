package httpkit

import (
	"net/http"

	phttp "shipscan/internal/platform/net/http"
)

// JSON body routes. The body is bound and validated into T first

func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

func PutJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Put(path, phttp.JSONHandler(h))
}

func PatchJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Patch(path, phttp.JSONHandler(h))
}

// DeleteJSON accepts an optional body
func DeleteJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Delete(path, phttp.JSONHandler(h))
}

// Body-less routes

func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.Call(h))
}

func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, phttp.Call(h))
}

func Delete(r Router, path string, h func(*http.Request) (any, error)) {
	r.Delete(path, phttp.Call(h))
}
