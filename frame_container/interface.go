package frame_container

import "image"

type Container interface {
	Format() string
	FrameCount() int
	Frame(index int) (image.Image, error)
}
