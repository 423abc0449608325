package frame_extractor

const (
	DefaultFrameIndex = 0
	DefaultScale      = 1.0
	DefaultWidth      = 0
	DefaultHeight     = 0
	DefaultCrop       = false
)

// Request selects one frame of a multi-frame image and how to size it.
// Width and Height take precedence over Scale when both are positive.
type Request struct {
	ImagePath  string  `json:"image_path"`
	FrameIndex int     `json:"frame_index"`
	Scale      float64 `json:"scale"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Crop       bool    `json:"crop"`
}

func NewRequest(imagePath string) *Request {
	return &Request{
		ImagePath:  imagePath,
		FrameIndex: DefaultFrameIndex,
		Scale:      DefaultScale,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Crop:       DefaultCrop,
	}
}
