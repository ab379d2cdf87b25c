// Package knowledge provides chunk storage and similarity search for the
// documentation corpus.
//
// A Chunk is an immutable unit of indexed knowledge: a bounded span of source
// text plus its provenance identifier. Embeddings are owned by the store and
// never travel with chunks returned from a search.
//
// Two store backends exist:
//
//   - Store: PostgreSQL + pgvector, the production backend. One Store
//     instance is scoped to exactly one named collection; searches can never
//     leak across collections.
//   - MemoryStore: an in-process cosine-similarity store for development and
//     tests.
//
// Both are safe for concurrent use. All searches use cosine similarity and
// the index must be built with the same metric; config validation enforces
// this at startup.
package knowledge
