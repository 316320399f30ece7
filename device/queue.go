package device

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/devblok/vkchain/core"
)

// QueueAssignment maps queue roles to queue family indices
type QueueAssignment struct {
	indices map[QueueRole]uint32
}

// Assign sets the family for role
func (q *QueueAssignment) Assign(role QueueRole, family uint32) {
	if q.indices == nil {
		q.indices = map[QueueRole]uint32{}
	}
	q.indices[role] = family
}

// Index returns the family assigned to role
func (q QueueAssignment) Index(role QueueRole) (uint32, bool) {
	family, ok := q.indices[role]
	return family, ok
}

// Complete reports if every role has a family
func (q QueueAssignment) Complete() bool {
	return len(q.Missing()) == 0
}

// Missing lists the roles with no family
func (q QueueAssignment) Missing() []QueueRole {
	var missing []QueueRole
	for _, role := range Roles {
		if _, ok := q.indices[role]; !ok {
			missing = append(missing, role)
		}
	}
	return missing
}

// Shared reports if graphics and presentation use the same family
func (q QueueAssignment) Shared() bool {
	g, gok := q.Index(RoleGraphics)
	p, pok := q.Index(RolePresentation)
	return gok && pok && g == p
}

// Families returns the distinct assigned families in role order
func (q QueueAssignment) Families() []uint32 {
	var families []uint32
	seen := map[uint32]bool{}
	for _, role := range Roles {
		family, ok := q.indices[role]
		if !ok || seen[family] {
			continue
		}
		seen[family] = true
		families = append(families, family)
	}
	return families
}

// Err returns an error marked ErrIncompleteQueueAssignment
// if a role is missing
func (q QueueAssignment) Err() error {
	missing := q.Missing()
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, role := range missing {
		names[i] = role.String()
	}
	return errors.Mark(
		errors.Newf("no queue family for %s", strings.Join(names, ", ")),
		core.ErrIncompleteQueueAssignment)
}

func (q QueueAssignment) String() string {
	var parts []string
	for _, role := range Roles {
		if family, ok := q.indices[role]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", role, family))
		} else {
			parts = append(parts, fmt.Sprintf("%s=none", role))
		}
	}
	return strings.Join(parts, " ")
}

// ResolveQueues finds queue families for graphics and presentation to
// surface, preferring one family doing both. The assignment may be
// incomplete, check it with Complete or Err. Errors are only returned
// for failed driver queries.
func ResolveQueues(adapter core.Adapter, surface core.Surface) (QueueAssignment, error) {
	var assignment QueueAssignment
	families := adapter.Info().QueueFamilies

	graphics := -1
	for i, family := range families {
		if family.Graphics() {
			graphics = i
			break
		}
	}

	if graphics >= 0 {
		assignment.Assign(RoleGraphics, uint32(graphics))

		present, err := adapter.SupportsPresent(uint32(graphics), surface)
		if err != nil {
			return QueueAssignment{}, errors.Wrapf(err, "present support of family %d", graphics)
		}
		if present {
			assignment.Assign(RolePresentation, uint32(graphics))
			return assignment, nil
		}

		for i, family := range families {
			if !family.Graphics() {
				continue
			}
			present, err := adapter.SupportsPresent(uint32(i), surface)
			if err != nil {
				return QueueAssignment{}, errors.Wrapf(err, "present support of family %d", i)
			}
			if present {
				assignment.Assign(RoleGraphics, uint32(i))
				assignment.Assign(RolePresentation, uint32(i))
				return assignment, nil
			}
		}
	}

	for i := range families {
		present, err := adapter.SupportsPresent(uint32(i), surface)
		if err != nil {
			return QueueAssignment{}, errors.Wrapf(err, "present support of family %d", i)
		}
		if present {
			assignment.Assign(RolePresentation, uint32(i))
			break
		}
	}
	return assignment, nil
}
