// Package tokenizer turns message bodies and search terms into normalised tokens.
//
// Normalisation is Unicode NFC followed by full case folding. Tokens are the
// maximal runs of letters and digits; everything else is a boundary. There is
// no stemming and no locale-specific segmentation.
//
// The same rules apply to indexed bodies and to query terms, so a token
// produced from a query can be compared byte-for-byte with indexed tokens.
// The final token of a query is marked as a prefix token so that an
// incomplete word ("lore") still matches ("lorem").
package tokenizer
