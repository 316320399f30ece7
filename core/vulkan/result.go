package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
)

// presentStatus separates the recoverable results of acquire and
// present from failures
func presentStatus(ret vk.Result) (core.PresentStatus, error) {
	switch ret {
	case vk.Success:
		return core.PresentOK, nil
	case vk.Suboptimal:
		return core.PresentSuboptimal, nil
	case vk.ErrorOutOfDate:
		return core.PresentOutOfDate, nil
	}
	return core.PresentOK, vk.Error(ret)
}
