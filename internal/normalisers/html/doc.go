// Package html converts the HTML subset used in formatted chat messages
// into plain searchable text.
package html
