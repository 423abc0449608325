package frame_queue

import (
	"context"
	"errors"
	"log"

	"gif_frame_node/frame_extractor"
	"gif_frame_node/frame_node"
)

const defaultQueueSize = 100

var ErrQueueFull = errors.New("frame queue is full")

type queueImpl struct {
	extractor frame_extractor.Extractor
	ictx      frame_node.InvocationContext
	queue     chan *QueueItem
}

type Config struct {
	Extractor         frame_extractor.Extractor
	InvocationContext frame_node.InvocationContext
	// Size bounds the number of waiting items. Defaults to 100.
	Size int
}

func New(cfg Config) (Queue, error) {
	if cfg.Extractor == nil {
		return nil, errors.New("missing frame extractor")
	}

	if cfg.InvocationContext == nil {
		return nil, errors.New("missing invocation context")
	}

	size := cfg.Size
	if size <= 0 {
		size = defaultQueueSize
	}

	return &queueImpl{
		extractor: cfg.Extractor,
		ictx:      cfg.InvocationContext,
		queue:     make(chan *QueueItem, size),
	}, nil
}

// AddFrame enqueues item and returns its position in line.
func (q *queueImpl) AddFrame(item *QueueItem) (int, error) {
	if item == nil || item.Request == nil {
		return 0, errors.New("missing frame request")
	}

	if item.Done == nil {
		return 0, errors.New("missing completion callback")
	}

	select {
	case q.queue <- item:
	default:
		return 0, ErrQueueFull
	}

	return len(q.queue), nil
}

func (q *queueImpl) StartPolling(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Printf("Polling stopped...\n")

			return
		case item := <-q.queue:
			q.process(ctx, item)
		}
	}
}

func (q *queueImpl) process(ctx context.Context, item *QueueItem) {
	node, err := frame_node.New(frame_node.Config{
		Extractor: q.extractor,
		Request:   item.Request,
		MemberID:  item.MemberID,
	})
	if err != nil {
		item.Done(nil, err)

		return
	}

	output, err := node.Invoke(ctx, q.ictx)
	if err != nil {
		log.Printf("Error extracting frame %d from %v: %v", item.Request.FrameIndex, item.Request.ImagePath, err)
	}

	item.Done(output, err)
}
