package neuron

import "fmt"

// Index maps simulator identifiers to their position in load order.
type Index struct {
	ids []int
	pos map[int]int
}

func NewIndex(ids []int) (*Index, error) {
	pos := make(map[int]int, len(ids))
	for i, id := range ids {
		if prev, ok := pos[id]; ok {
			return nil, fmt.Errorf("%w: %d at rows %d and %d", ErrDuplicateID, id, prev, i)
		}
		pos[id] = i
	}
	return &Index{ids: ids, pos: pos}, nil
}

func (ix *Index) Len() int   { return len(ix.ids) }
func (ix *Index) IDs() []int { return ix.ids }

func (ix *Index) Lookup(id int) (int, bool) {
	i, ok := ix.pos[id]
	return i, ok
}

// Resolve is Lookup with an ErrUnknownID error for missing identifiers.
func (ix *Index) Resolve(id int) (int, error) {
	i, ok := ix.pos[id]
	if !ok {
		return -1, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return i, nil
}
