// Package locate finds where a short, possibly noisy query string occurs in
// a long reference text.
//
// # Similarity
//
// A window of the text is scored against the query as
//
//	100 × (1 − lev(query, window) / max(len(query), len(window)))
//
// where lev is the character-level Levenshtein distance (unit-cost insert,
// delete, substitute). Lengths and offsets count Unicode code points.
//
// # Search
//
// Locate runs a semi-global alignment of the query over the whole text in
// O(len(text) × len(query)) time and O(len(query)) memory. For every end
// offset it keeps the closest window ending there, of any length, so matches
// may be shorter or longer than the query. Because a window longer than the
// query is scored against its own length, a few further passes of the same
// cost look for long windows that beat the best score so far. Among equally
// scored windows the leftmost start wins, then the shortest; one pass over
// the reversed strings finds that start. The winner is
// then shrunk from either end while the score does not drop.
//
// Each result also reports the part of the query the alignment actually
// matched (SrcStart, SrcEnd), so leading or trailing junk in the query is
// visible to callers.
//
// A score below the cutoff is not an error: Locate returns a nil span.
package locate
