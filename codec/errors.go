package codec

import (
	"errors"
	"fmt"
	"reflect"
)

// UnavailableError reports that no strategy matched an attached type.
// It is raised at route declaration time, never at request time.
type UnavailableError struct {
	// Type is the attached type that failed resolution (may be nil).
	Type reflect.Type
}

func (e *UnavailableError) Error() string {
	if e.Type == nil {
		return "codec: no codec available for nil type"
	}
	return fmt.Sprintf("codec: no codec available for type %s", e.Type)
}

// DecodeError reports a payload structurally incompatible with the attached
// type. It is distinct from any transport-level failure.
type DecodeError struct {
	// Type is the attached type the payload was decoded into (may be nil).
	Type reflect.Type
	// Codec names the strategy that attempted the decode.
	Codec string
	// Err is the underlying decoder error.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("codec: decode via %s: %v", e.Codec, e.Err)
	}
	return fmt.Sprintf("codec: decode %s via %s: %v", e.Type, e.Codec, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *DecodeError) Unwrap() error { return e.Err }

// IsUnavailable checks if an error is a codec resolution failure.
func IsUnavailable(err error) bool {
	var e *UnavailableError
	return errors.As(err, &e)
}

// IsDecode checks if an error is a payload decode failure.
func IsDecode(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}
