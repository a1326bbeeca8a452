package neuron

import "errors"

var (
	// ErrUnknownID indicates an edge or sample references an identifier that was never loaded.
	ErrUnknownID = errors.New("neuron: unknown identifier")

	// ErrDuplicateID indicates the same identifier appears twice in one position file.
	ErrDuplicateID = errors.New("neuron: duplicate identifier")
)
