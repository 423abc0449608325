package frame_queue

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gif_frame_node/entities"
	"gif_frame_node/frame_extractor"
	"gif_frame_node/frame_node"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingContext struct {
	mu    sync.Mutex
	saved int
}

func (c *countingContext) SaveImage(_ context.Context, img image.Image, opts frame_node.SaveOptions) (*entities.ExtractedFrame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.saved++

	return &entities.ExtractedFrame{
		ImageName:  "frame.png",
		SourcePath: opts.SourcePath,
		FrameIndex: opts.FrameIndex,
		Width:      img.Bounds().Dx(),
		Height:     img.Bounds().Dy(),
	}, nil
}

func writePNG(t *testing.T) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	img.Set(1, 1, color.NRGBA{255, 0, 0, 255})

	path := filepath.Join(t.TempDir(), "still.png")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, img))

	return path
}

func newTestQueue(t *testing.T, size int) (Queue, *countingContext) {
	t.Helper()

	extractor, err := frame_extractor.New(frame_extractor.Config{})
	require.NoError(t, err)

	ictx := &countingContext{}

	q, err := New(Config{Extractor: extractor, InvocationContext: ictx, Size: size})
	require.NoError(t, err)

	return q, ictx
}

func TestNewValidates(t *testing.T) {
	_, err := New(Config{InvocationContext: &countingContext{}})
	assert.EqualError(t, err, "missing frame extractor")

	extractor, err := frame_extractor.New(frame_extractor.Config{})
	require.NoError(t, err)

	_, err = New(Config{Extractor: extractor})
	assert.EqualError(t, err, "missing invocation context")
}

func TestAddFrameValidates(t *testing.T) {
	q, _ := newTestQueue(t, 1)

	_, err := q.AddFrame(nil)
	assert.Error(t, err)

	_, err = q.AddFrame(&QueueItem{Request: frame_extractor.NewRequest("a.gif")})
	assert.EqualError(t, err, "missing completion callback")
}

func TestAddFrameReportsPositionAndFull(t *testing.T) {
	q, _ := newTestQueue(t, 2)
	done := func(*frame_node.ImageOutput, error) {}

	pos, err := q.AddFrame(&QueueItem{Request: frame_extractor.NewRequest("a.gif"), Done: done})
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = q.AddFrame(&QueueItem{Request: frame_extractor.NewRequest("b.gif"), Done: done})
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	_, err = q.AddFrame(&QueueItem{Request: frame_extractor.NewRequest("c.gif"), Done: done})
	assert.ErrorIs(t, err, ErrQueueFull)
}

type result struct {
	output *frame_node.ImageOutput
	err    error
}

func TestStartPollingProcessesItems(t *testing.T) {
	q, ictx := newTestQueue(t, 10)

	results := make(chan result, 2)
	done := func(output *frame_node.ImageOutput, err error) {
		results <- result{output: output, err: err}
	}

	_, err := q.AddFrame(&QueueItem{Request: frame_extractor.NewRequest(writePNG(t)), MemberID: "1", Done: done})
	require.NoError(t, err)

	missing := frame_extractor.NewRequest(filepath.Join(t.TempDir(), "missing.gif"))
	_, err = q.AddFrame(&QueueItem{Request: missing, Done: done})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})

	go func() {
		q.StartPolling(ctx)
		close(stopped)
	}()

	first := waitResult(t, results)
	require.NoError(t, first.err)
	assert.Equal(t, &frame_node.ImageOutput{Image: frame_node.ImageField{ImageName: "frame.png"}, Width: 8, Height: 6}, first.output)

	second := waitResult(t, results)
	assert.ErrorIs(t, second.err, frame_extractor.ErrNotFound)
	assert.Nil(t, second.output)

	cancel()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}

	assert.Equal(t, 1, ictx.saved)
}

func waitResult(t *testing.T, results <-chan result) result {
	t.Helper()

	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for queue item")
	}

	return result{}
}
