// Package preflight provides readiness checks for the external services and
// filesystem paths graphion depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and logs every failure so a broken
//     ffmpeg build or rejected API key is visible before the first request.
//   - The CLI "graphion doctor" command renders the same results as a table
//     and exits non-zero when a required check fails.
package preflight
