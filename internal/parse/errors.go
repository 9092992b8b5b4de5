package parse

import "errors"

// ErrCorruptHeader reports a block whose declared sizes are zero or place it
// past the end of the file. Re-exported at the module root; defined here so
// the per-format packages can share one sentinel.
var ErrCorruptHeader = errors.New("rar: header sizes are zero or exceed the file size")
