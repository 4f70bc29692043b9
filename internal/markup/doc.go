// Package markup turns a user prompt into a self-contained animated HTML
// document.
//
// The Generator sends the prompt with a fixed system instruction through a
// text-generation client, strips code fences and surrounding prose from the
// reply, and tokenizes the result to reject documents with no elements.
package markup
