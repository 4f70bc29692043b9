// Package textutil normalizes user text before it reaches the pipeline and
// derives filesystem-safe tokens from it.
package textutil
