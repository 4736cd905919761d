package utils

// DynBuffer is a growable typed buffer that keeps its allocation across
// Reset cycles, avoiding re-allocation in hot per-thread loops.
type DynBuffer[T any] struct {
	cells []T
}

func NewDynBuffer[T any](capHint int) *DynBuffer[T] {
	return &DynBuffer[T]{
		cells: make([]T, 0, capHint),
	}
}

func (db *DynBuffer[T]) Add(item T) {
	db.cells = append(db.cells, item)
}

func (db *DynBuffer[T]) Cells() []T {
	return db.cells
}

func (db *DynBuffer[T]) Len() int {
	return len(db.cells)
}

func (db *DynBuffer[T]) Reset() {
	db.cells = db.cells[:0]
}
