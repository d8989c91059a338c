package dom

import (
	"fmt"

	"github.com/SpikedPunchVictim/gaia/uid"
)

// ArgError reports a request that is invalid before any action is raised.
type ArgError struct {
	Msg string
}

func (e *ArgError) Error() string { return "dom: " + e.Msg }

func argErr(format string, args ...interface{}) error {
	return &ArgError{Msg: fmt.Sprintf(format, args...)}
}

// NameError reports a name already taken at the destination.
type NameError struct {
	Name string
	Dest string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("dom: name %q already exists at %q", e.Name, e.Dest)
}

// NotFoundError reports an object that could not be resolved locally or
// through the authority.
type NotFoundError struct {
	ID   uid.ID
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("dom: object %s at %q not found", e.ID, e.Path)
	}
	return fmt.Sprintf("dom: object %s not found", e.ID)
}
