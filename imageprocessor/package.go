// Package imageprocessor decodes image files into pixel buffers, turns them
// into fingerprints and runs similarity searches against a corpus store.
package imageprocessor
