// Package api defines the JSON wire types served by the HTTP layer and the
// status command.
//
// DTOs use camelCase JSON tags so browser clients can consume them directly.
// Converters translate pipeline results and dependency checks into these
// shapes; handlers never marshal internal types.
package api
