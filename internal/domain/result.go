package domain

// ResultKind tags the outcome of a single store call.
type ResultKind int

const (
	Hit ResultKind = iota
	Empty
	Failed
)

func (k ResultKind) String() string {
	switch k {
	case Hit:
		return "hit"
	case Empty:
		return "empty"
	default:
		return "error"
	}
}

// Result is the classified outcome of a store read.
type Result[T any] struct {
	Kind ResultKind
	Data T
	Err  error
}

// HitOf wraps data found in a store.
func HitOf[T any](data T) Result[T] { return Result[T]{Kind: Hit, Data: data} }

// EmptyOf reports a read that found nothing.
func EmptyOf[T any]() Result[T] { return Result[T]{Kind: Empty} }

// FailedOf reports a read that errored.
func FailedOf[T any](err error) Result[T] { return Result[T]{Kind: Failed, Err: err} }
