package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/vkchain/core"
	"github.com/devblok/vkchain/core/renderer"
)

var greyAxis = mgl32.Vec3{1, 1, 1}.Normalize()

// ClearRecorder clears every swapchain image to a colour whose hue
// turns one degree per frame. It needs no pipeline or render pass.
type ClearRecorder struct {
	Base mgl32.Vec4
}

// NewClearRecorder starts cycling from base
func NewClearRecorder(base mgl32.Vec4) *ClearRecorder {
	return &ClearRecorder{Base: base}
}

// Colour returns the clear colour of frame
func (c *ClearRecorder) Colour(frame uint64) mgl32.Vec4 {
	angle := mgl32.DegToRad(float32(frame % 360))
	colour := mgl32.HomogRotate3D(angle, greyAxis).Mul4x1(c.Base)
	for i := 0; i < 3; i++ {
		colour[i] = mgl32.Clamp(colour[i], 0, 1)
	}
	colour[3] = c.Base[3]
	return colour
}

// Record implements renderer.Recorder
func (c *ClearRecorder) Record(cmd core.CommandBuffer, target renderer.Target) error {
	buffer, ok := cmd.(*CommandBuffer)
	if !ok {
		return errors.Newf("not a vulkan command buffer: %T", cmd)
	}
	image, ok := target.Image.(vk.Image)
	if !ok {
		return errors.Newf("not a vulkan image: %T", target.Image)
	}

	// The submission waits for the image at colour attachment output,
	// the first barrier chains the clear behind that wait.
	transition(buffer.handle, image,
		vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
		0, vk.AccessFlags(vk.AccessTransferWriteBit),
		vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit))

	var value vk.ClearColorValue
	*(*[4]float32)(unsafe.Pointer(&value)) = [4]float32(c.Colour(target.Frame))
	vk.CmdClearColorImage(buffer.handle, image, vk.ImageLayoutTransferDstOptimal, &value, 1, []vk.ImageSubresourceRange{colorRange})

	transition(buffer.handle, image,
		vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutPresentSrc,
		vk.AccessFlags(vk.AccessTransferWriteBit), 0,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit))
	return nil
}

func transition(cmd vk.CommandBuffer, image vk.Image, from, to vk.ImageLayout, srcAccess, dstAccess vk.AccessFlags, srcStage, dstStage vk.PipelineStageFlags) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           from,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange:    colorRange,
	}
	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}
