// Package indexer builds the site's search index artifact.
//
// It turns content items into search documents, adds each one exactly
// once to a [store.Index] and writes the serialized snapshot that the
// search engine fetches at runtime:
//
//	docs := indexer.FromItems(items)
//	summary, err := indexer.WriteFile(ctx, "_site/search-index.json", docs,
//	    indexer.WithBackend(store.BackendBleve))
//
// A build is a single pass. Any failure, such as a duplicate ref, fails the
// whole build and leaves an existing artifact untouched.
package indexer
