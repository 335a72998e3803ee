package roller

// RollerError is a custom error type for roller service errors
type RollerError string

// Error implements the error interface
func (e RollerError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig       RollerError = "config cannot be nil"
	ErrNilRepository   RollerError = "history repository cannot be nil"
	ErrNilDiceRoller   RollerError = "dice roller cannot be nil"
	ErrNilProfile      RollerError = "profile store cannot be nil"
	ErrNilRoll         RollerError = "roll cannot be nil"
	ErrMissingUserID   RollerError = "user ID cannot be empty"
	ErrUnsupportedDie  RollerError = "unsupported die"
	ErrUserUnavailable RollerError = "could not get or create user"
)
