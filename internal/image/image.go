// Package image holds the I/O image: the table of current input,
// output, and memory values shared between the scan engine and external
// collaborators (Modbus gateway, UI, tests).
//
// Two types live here. Image is a plain value map used inside a scan -
// it has no locking because a scan is single-writer by construction.
// Table wraps an Image with a mutex and is the only structure mutated
// by parties other than the evaluator.
package image

import (
	"sort"

	"github.com/mfell/rungine/internal/ladder"
)

// Image maps element IDs to values. The partitioning into digital
// inputs, outputs, and memory areas is advisory; the evaluator treats
// the image as one flat namespace keyed by ID.
type Image map[string]ladder.Value

// New returns an empty image.
func New() Image {
	return make(Image)
}

// Get returns the value for id, or nil if absent.
func (img Image) Get(id string) ladder.Value {
	return img[id]
}

// Set stores a value under id.
func (img Image) Set(id string, v ladder.Value) {
	img[id] = v
}

// Bit reads id as a discrete bit.
//
// A missing id reads as false - dangling contact references are not an
// error. An id holding a Word reads as the typed zero with mismatch set,
// so the caller can count the anomaly without aborting the scan.
func (img Image) Bit(id string) (val bool, mismatch bool) {
	v, present := img[id]
	if !present {
		return false, false
	}
	b, ok := ladder.AsBit(v)
	if !ok {
		return false, true
	}
	return b, false
}

// Word reads id as an integer word, with the same miss and mismatch
// semantics as Bit.
func (img Image) Word(id string) (val int32, mismatch bool) {
	v, present := img[id]
	if !present {
		return 0, false
	}
	w, ok := ladder.AsWord(v)
	if !ok {
		return 0, true
	}
	return w, false
}

// Clone returns a value copy of the image.
func (img Image) Clone() Image {
	cp := make(Image, len(img))
	for k, v := range img {
		cp[k] = v
	}
	return cp
}

// Merge overwrites img with every key present in delta.
// Keys absent from delta are unchanged.
func (img Image) Merge(delta Image) {
	for k, v := range delta {
		img[k] = v
	}
}

// SortedIDs returns the image's keys in lexical order.
// Used wherever iteration order must be deterministic (trace
// serialization, change notification).
func (img Image) SortedIDs() []string {
	ids := make([]string, 0, len(img))
	for id := range img {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
