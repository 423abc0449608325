package entities

import "time"

// ExtractedFrame describes one frame persisted by the image store.
type ExtractedFrame struct {
	ID         int64     `json:"id"`
	ImageName  string    `json:"image_name"`
	SourcePath string    `json:"source_path"`
	FrameIndex int       `json:"frame_index"`
	MemberID   string    `json:"member_id"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}
