package user

import "fmt"

// InvalidCredentialsError covers both unknown usernames and wrong passwords
// so login failures don't leak which one it was.
type InvalidCredentialsError struct{}

func (e *InvalidCredentialsError) Error() string {
	return "invalid username or password"
}

type AccountInactiveError struct {
	Username string
}

func (e *AccountInactiveError) Error() string {
	return fmt.Sprintf("account %s is deactivated", e.Username)
}

type UsernameTakenError struct {
	Username string
}

func (e *UsernameTakenError) Error() string {
	return fmt.Sprintf("username %s is already taken", e.Username)
}

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %s not found", e.ID)
}

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid user input: " + e.Reason
}
