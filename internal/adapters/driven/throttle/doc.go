// Package throttle provides rate-limiting decorators for driven collaborators.
//
// Profile lookups may be served by a remote homeserver. The decorator keeps a
// burst of concurrent result enrichment from flooding it: callers wait for a
// token, and a lookup whose context ends while waiting fails with
// domain.ErrCollaboratorUnavailable so the result is still returned without
// the profile.
package throttle
