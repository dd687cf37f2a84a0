// Package matrix converts between domain events and the Matrix
// client-server JSON shapes used by the import file and the REST API.
package matrix
