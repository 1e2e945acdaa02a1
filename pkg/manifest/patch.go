package manifest

import (
	"bytes"

	"github.com/arthur-debert/packwrap/pkg/errors"
)

// Rule is an exact substring transformation applied to the manifest.
// The "from" pattern must occur exactly once: an absent pattern would
// make the patch a silent no-op, and a duplicated one would rewrite
// sites the rule was never meant to touch. Both are rejected loudly.
type Rule struct {
	From string
	To   string
}

// DefaultRule widens the crate's declared output kinds so the packager
// can build a cdylib alongside the rlib.
var DefaultRule = Rule{
	From: `crate-type = ["rlib"]`,
	To:   `crate-type = ["rlib", "cdylib"]`,
}

// Apply performs the substring replacement on a copy of data. The input
// is never modified, so a failed patch leaves nothing to undo.
func (r Rule) Apply(data []byte) ([]byte, error) {
	from := []byte(r.From)

	switch n := bytes.Count(data, from); n {
	case 1:
		// replace below
	case 0:
		err := errors.Newf(errors.ErrPatchMismatch,
			"expected pattern not found in manifest: %s", r.From)
		if bytes.Contains(data, []byte(r.To)) {
			// Likely a leftover from a run that never restored.
			err = err.WithDetail("already_patched", true)
		}
		return nil, err
	default:
		return nil, errors.Newf(errors.ErrPatchMismatch,
			"expected pattern found %d times in manifest, want exactly once: %s", n, r.From).
			WithDetail("occurrences", n)
	}

	return bytes.Replace(data, from, []byte(r.To), 1), nil
}

// Validate reports whether the rule is usable: both sides non-empty and
// actually different.
func (r Rule) Validate() error {
	if r.From == "" || r.To == "" {
		return errors.New(errors.ErrConfigValid, "patch rule requires both from and to patterns")
	}
	if r.From == r.To {
		return errors.New(errors.ErrConfigValid, "patch rule from and to patterns are identical")
	}
	return nil
}
