package lod

import "errors"

var (
	// ErrInvalidArgument reports a malformed dense index or other bad input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidLevel reports a level outside the range a call accepts.
	ErrInvalidLevel = errors.New("invalid LOD level")
	// ErrInvalidDiffSet reports stray bits or a diffset the level cannot use.
	ErrInvalidDiffSet = errors.New("invalid diffset")
	// ErrInvalidGridSize reports a patch size that is not 2^k+1 in range.
	ErrInvalidGridSize = errors.New("invalid patch vertex count")
	// ErrBuildFailure wraps any error that stopped BuildIndexTable.
	ErrBuildFailure = errors.New("index table build failed")
	// ErrIndexOverflow reports a strip that needs 32-bit indices.
	ErrIndexOverflow = errors.New("index does not fit 16 bits")
)
