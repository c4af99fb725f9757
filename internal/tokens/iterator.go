package tokens

// SliceIterator is an Iterator over an in-memory Stream.
// Use Clone to fork a scan.
type SliceIterator struct {
	stream Stream
	pos    int
}

// Clone returns an iterator at the same position that moves independently.
func (it *SliceIterator) Clone() *SliceIterator {
	c := *it
	return &c
}

// NewIterator returns an iterator positioned at index.
// Out-of-range indices produce an iterator that is AtEnd.
func NewIterator(stream Stream, index int) *SliceIterator {
	return &SliceIterator{stream: stream, pos: index}
}

// IteratorAt positions a new iterator on the token containing offset.
// The iterator is AtEnd when no token contains offset.
func IteratorAt(stream Stream, offset int) *SliceIterator {
	return NewIterator(stream, stream.IndexAt(offset))
}

// IteratorBefore positions a new iterator on the last token starting before offset.
func IteratorBefore(stream Stream, offset int) *SliceIterator {
	return NewIterator(stream, stream.IndexBefore(offset))
}

// Index returns the current stream index.
func (it *SliceIterator) Index() int {
	return it.pos
}

// Token returns the current token. ok is false when AtEnd.
func (it *SliceIterator) Token() (tok Token, ok bool) {
	if it.AtEnd() {
		return Token{}, false
	}
	return it.stream[it.pos], true
}

func (it *SliceIterator) Type() Type {
	if it.AtEnd() {
		return None
	}
	return it.stream[it.pos].Type
}

func (it *SliceIterator) Start() int {
	if it.AtEnd() {
		return -1
	}
	return it.stream[it.pos].Start
}

func (it *SliceIterator) End() int {
	if it.AtEnd() {
		return -1
	}
	return it.stream[it.pos].End
}

// Advance moves forward one token. Advancing past the end sticks at len(stream).
func (it *SliceIterator) Advance() {
	if it.pos < len(it.stream) {
		it.pos++
	}
}

// Retreat moves backward one token. Retreating past the start sticks at -1.
func (it *SliceIterator) Retreat() {
	if it.pos >= 0 {
		it.pos--
	}
}

func (it *SliceIterator) AtEnd() bool {
	return it.pos < 0 || it.pos >= len(it.stream)
}
