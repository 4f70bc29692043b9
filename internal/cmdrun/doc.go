// Package cmdrun executes external tools as a single atomic step: the caller
// learns whether the process exited zero and, if not, sees the tail of its
// diagnostic output. Cancelling the context kills the whole process group.
package cmdrun
