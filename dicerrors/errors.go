// Package dicerrors defines the closed error taxonomy shared by every
// component of the analyzer. Load-time errors (dictionary, config, I/O) are
// fatal; per-input errors leave the caller's analyzer reusable.
package dicerrors

import "errors"

// Sentinel errors. Wrap with fmt.Errorf("...: %w", Err...) at the call site
// so errors.Is still matches after context is added.
var (
	// ErrInvalidDictionary is returned when a dictionary's magic bytes or
	// internal offsets do not describe a well-formed binary dictionary.
	ErrInvalidDictionary = errors.New("invalid dictionary")

	// ErrUnsupportedVersion is returned when a dictionary's version field is
	// not one of the closed set {system-1, system-2, user-1, user-2, user-3}.
	ErrUnsupportedVersion = errors.New("unsupported dictionary version")

	// ErrConfig is returned when a Config record cannot be resolved into a
	// usable analyzer (missing paths, conflicting plugin settings).
	ErrConfig = errors.New("invalid configuration")

	// ErrIO wraps file access failures (open, mmap, read) during load.
	ErrIO = errors.New("dictionary I/O error")

	// ErrEosNotReachable is returned per-input when no path from BOS reaches
	// EOS, because no OOV provider covering the default category was
	// configured and the lexicon produced no match at some position.
	ErrEosNotReachable = errors.New("EOS not reachable")

	// ErrInvalidSplit is returned per-input when a node's A/B split list
	// does not span exactly its parent's head-word length.
	ErrInvalidSplit = errors.New("invalid split")

	// ErrInvalidInput is returned per-input for non-UTF-8 byte sequences or
	// malformed buffer edits.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPlugin is returned by a plugin's setup (fatal, load-time) or apply
	// (per-input, run-time) method.
	ErrPlugin = errors.New("plugin error")
)

// IsFatal reports whether err should abort dictionary/analyzer construction
// rather than merely failing one call to tokenize.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidDictionary) ||
		errors.Is(err, ErrUnsupportedVersion) ||
		errors.Is(err, ErrConfig) ||
		errors.Is(err, ErrIO)
}
