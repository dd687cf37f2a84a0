// Package rest exposes message search over HTTP using gin.
//
// The search endpoint follows the Matrix client-server API:
//
//	POST /_matrix/client/v3/search?next_batch=<token>
//
// Only the room_events category is supported. Errors are returned as
// {"errcode": ..., "error": ...} with M_INVALID_PARAM, M_NOT_JSON,
// M_NOT_FOUND or M_UNKNOWN.
package rest
