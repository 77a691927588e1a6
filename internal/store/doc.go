// Package store holds the storage backends that implement posts.Store and the
// options they share.
//
// Backends:
//   - memory:     mutex-guarded in-process slice (default)
//   - redisstore: Redis hashes plus an insertion-order list, with Pub/Sub events
//   - postgres:   a posts table managed by embedded migrations
//
// Every backend must pass the contract suite in storetest.
package store
