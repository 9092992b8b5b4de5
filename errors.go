package rarmeta

import "github.com/javi11/rarmeta/internal/parse"

// ErrCorruptHeader reports a block whose declared sizes are zero or place
// it past the end of the file. Once a size field cannot be trusted, no
// later offset in the file can be located, so the block iterators terminate
// after returning this error.
//
// Short reads surface as io.EOF or io.ErrUnexpectedEOF; any other I/O
// failure is passed through untouched. All three are equally fatal to the
// iterator that returned them.
var ErrCorruptHeader = parse.ErrCorruptHeader
