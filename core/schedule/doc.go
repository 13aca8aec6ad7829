// Package schedule holds the daily alarm configuration accepted from the
// shadow and fires the audible alarm once per matching local minute.
package schedule
