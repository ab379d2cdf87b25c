// Package rag implements the history-aware retrieval pipeline.
//
// A turn flows through three stages:
//
//	current query + prior turns
//	     |
//	     v
//	Condenser  -- rewrites the query into a standalone, retrieval-ready
//	     |        query (identity when history is empty or rewriting fails)
//	     v
//	Retriever  -- embeds the standalone query and runs top-K cosine search
//	     |        against one fixed collection
//	     v
//	Generator  -- produces an answer grounded in the retrieved chunks
//
// The condensation step exists because concatenating raw history onto the
// query before embedding measurably degrades retrieval: the embedding drifts
// toward incidental details from earlier turns instead of the user's present
// intent. Rewrite-then-retrieve is therefore the only supported mode; raw
// concatenation is deliberately not offered.
//
// The source set returned with an answer contains exactly the distinct
// source IDs of the chunks that made it into the generation context. Chunks
// dropped by the context budget never contribute a source.
//
// All collaborator failures are converted to TurnError values with an
// explicit Kind before they reach the caller; no store, embedder, or model
// error types cross this boundary.
package rag
