// Package api implements the HTTP transport to the LMS REST backend.
//
// It is a thin JSON client: it shapes requests, attaches the bearer token
// and a request id, and normalizes error responses into *api.Error values
// the service layer can inspect. It performs no session mutation itself —
// that is the auth service's job.
package api
