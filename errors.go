package mmjp

import (
	"errors"

	"github.com/mmjp/go-mmjp/model"
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrModelNotFound indicates the model file does not exist.
	ErrModelNotFound = errors.New("mmjp: model file not found")

	// ErrCorruptModel indicates the model file exists but is malformed.
	ErrCorruptModel = model.ErrCorruptModel

	// ErrUnsupportedVersion indicates the model uses a format version this
	// package cannot read.
	ErrUnsupportedVersion = model.ErrUnsupportedVersion

	// ErrOutOfRange indicates a parameter outside its representable range.
	ErrOutOfRange = model.ErrOutOfRange
)
