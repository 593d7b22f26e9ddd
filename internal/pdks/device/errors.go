package device

import "golang.org/x/xerrors"

// Unreachable tags err so errors.Is(err, ErrUnreachable) holds while the
// cause stays inspectable. A nil err stays nil.
func Unreachable(err error) error {
	if err == nil {
		return nil
	}
	return &unreachableError{err: err}
}

type unreachableError struct {
	err error
}

func (e *unreachableError) Error() string { return "device unreachable: " + e.err.Error() }

func (e *unreachableError) Unwrap() error { return e.err }

func (*unreachableError) Is(target error) bool { return target == ErrUnreachable }

var _ xerrors.Wrapper = (*unreachableError)(nil)
