// Package httpkit is what modules import to mount handlers. It re-exports
// the platform router and envelope helpers
package httpkit

import (
	"net/http"

	phttp "shipscan/internal/platform/net/http"
)

type (
	// Envelope is the JSON body of every response
	Envelope = phttp.Envelope

	// Response is what handlers return instead of writing
	Response = phttp.Response

	// Router is the platform router seam
	Router = phttp.Router
)

// Created returns a 201 response
func Created(data any) Response { return phttp.Created(data) }

// Accepted returns a 202 response
func Accepted(data any) Response { return phttp.Accepted(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Param returns a named path parameter
func Param(r *http.Request, name string) string { return phttp.Param(r, name) }

// WriteError writes err as an error envelope, for handlers that own the writer
func WriteError(w http.ResponseWriter, r *http.Request, err error) { phttp.RespondError(w, r, err) }
