// Package content loads the site's markdown items and provides the small
// collection helpers the generation run and the templates rely on.
//
// An Item is identified by its canonical URL and is never mutated after
// Load returns.
package content
