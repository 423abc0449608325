package frame_queue

import (
	"context"

	"gif_frame_node/frame_extractor"
	"gif_frame_node/frame_node"
)

type Queue interface {
	AddFrame(item *QueueItem) (int, error)
	// StartPolling processes queued items one at a time until ctx is done.
	StartPolling(ctx context.Context)
}

type QueueItem struct {
	Request  *frame_extractor.Request
	MemberID string
	// Done receives the outcome of the extraction. It runs on the polling goroutine.
	Done func(output *frame_node.ImageOutput, err error)
}
