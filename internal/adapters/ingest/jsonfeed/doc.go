// Package jsonfeed streams draw records out of a JSON document on disk
//
// Accepted shapes, detected from the first significant byte:
// - a JSON array of records
// - a stream of JSON values (NDJSON or concatenated objects)
// - a single envelope object wrapping a list of records
// - a lone record object
//
// Gzip input is detected by magic bytes. Values are decoded with UseNumber so
// money and contest numbers keep their exact text. Malformed JSON anywhere in
// the document is fatal; there is no line skipping.
package jsonfeed
