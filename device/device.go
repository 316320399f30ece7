// Package device picks the adapter to render with and creates the
// logical device on it. Selection only reads adapter reported state,
// the first and only mutation is CreateDevice in Build.
package device

import (
	"fmt"
)

// QueueRole is the logical purpose a queue is used for
type QueueRole int

// Queue roles resolved for every logical device
const (
	RoleGraphics QueueRole = iota
	RolePresentation
)

// Roles lists every role in resolution order
var Roles = []QueueRole{RoleGraphics, RolePresentation}

func (r QueueRole) String() string {
	switch r {
	case RoleGraphics:
		return "graphics"
	case RolePresentation:
		return "presentation"
	}
	return fmt.Sprintf("QueueRole(%d)", int(r))
}
