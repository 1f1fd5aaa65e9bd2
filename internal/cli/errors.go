package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/officeledger/internal/common"
)

var errUnknownCommand = errors.New("unknown command")

// usageError is returned when a command is called with the wrong arguments.
type usageError struct{ usage string }

func (e usageError) Error() string { return "usage: " + e.usage }

// describe turns ledger and session errors into a line for the terminal.
func describe(err error) string {
	var fe *common.FieldError
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return "please log in first"
	case errors.Is(err, common.ErrForbidden):
		return "this command needs an admin account"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid username or password"
	case errors.Is(err, common.ErrInvalidToken):
		return "your session has expired, please log in again"
	case errors.As(err, &fe):
		lines := strings.Split(err.Error(), "\n")
		return fmt.Sprintf("invalid input: %s", strings.Join(lines, "; "))
	}
	return err.Error()
}
