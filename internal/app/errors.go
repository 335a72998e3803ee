package app

// ControllerError is a custom error type for controller errors
type ControllerError string

// Error implements the error interface
func (e ControllerError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig      ControllerError = "config cannot be nil"
	ErrNilService     ControllerError = "roller service cannot be nil"
	ErrNilProfile     ControllerError = "profile store cannot be nil"
	ErrNilView        ControllerError = "view cannot be nil"
	ErrUnsupportedDie ControllerError = "unsupported die"
)
