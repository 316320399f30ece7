package device

import (
	"fmt"
	"strings"

	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
)

// DiscreteBonus is added to the score of discrete GPUs
const DiscreteBonus = 1000

// Score is the outcome of scoring an adapter. An ineligible score
// carries the reason instead of a value.
type Score struct {
	Value    uint32
	Eligible bool
	Reason   string
}

// Points is an eligible score of v
func Points(v uint32) Score {
	return Score{Value: v, Eligible: true}
}

// Ineligible is the score of an adapter failing a hard criterion
func Ineligible(format string, args ...interface{}) Score {
	return Score{Reason: fmt.Sprintf(format, args...)}
}

func (s Score) String() string {
	if !s.Eligible {
		return "ineligible: " + s.Reason
	}
	return fmt.Sprint(s.Value)
}

// Criterion scores one aspect of an adapter
type Criterion func(info core.AdapterInfo) Score

// QueueCriterion requires at least one graphics capable queue family
func QueueCriterion(info core.AdapterInfo) Score {
	for _, family := range info.QueueFamilies {
		if family.Graphics() {
			return Points(0)
		}
	}
	return Ineligible("no graphics queue family")
}

// ExtensionCriterion requires every extension in required
func ExtensionCriterion(required []string) Criterion {
	return func(info core.AdapterInfo) Score {
		if missing := core.MissingNames(required, info.Extensions); len(missing) > 0 {
			return Ineligible("missing extensions %s", strings.Join(missing, ", "))
		}
		return Points(0)
	}
}

// PropertiesCriterion gives DiscreteBonus to adapters of the preferred types
func PropertiesCriterion(preferred ...vk.PhysicalDeviceType) Criterion {
	return func(info core.AdapterInfo) Score {
		for _, t := range preferred {
			if info.Type == t {
				return Points(DiscreteBonus)
			}
		}
		return Points(0)
	}
}

// Scorer sums criteria scores, the first ineligible criterion
// makes the whole adapter ineligible.
type Scorer struct {
	// MinAPIVersion rejects adapters below it before any criterion runs
	MinAPIVersion uint32
	Criteria      []Criterion
}

// NewScorer creates the scorer used for rendering: a graphics queue,
// the required extensions and a preference for discrete GPUs.
func NewScorer(minAPIVersion uint32, requiredExtensions []string) *Scorer {
	return &Scorer{
		MinAPIVersion: minAPIVersion,
		Criteria: []Criterion{
			QueueCriterion,
			ExtensionCriterion(requiredExtensions),
			PropertiesCriterion(vk.PhysicalDeviceTypeDiscreteGpu),
		},
	}
}

// Score scores one adapter
func (s *Scorer) Score(info core.AdapterInfo) Score {
	if info.APIVersion < s.MinAPIVersion {
		return Ineligible("api version %s below %s",
			core.VersionString(info.APIVersion), core.VersionString(s.MinAPIVersion))
	}

	var total uint32
	for _, criterion := range s.Criteria {
		score := criterion(info)
		if !score.Eligible {
			return score
		}
		total += score.Value
	}
	return Points(total)
}
