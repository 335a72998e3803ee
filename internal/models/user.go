package models

// User represents a roller known to a history store
type User struct {
	// ID is the store-issued identifier for the user
	ID string `json:"id"`

	// UserName is the display name of the user
	UserName string `json:"user_name"`
}

// DisplayName returns name, or DefaultUserName when it is blank
func DisplayName(name string) string {
	if name == "" {
		return DefaultUserName
	}
	return name
}
