package mapworker

import (
	"context"
	"image"
	"sync"
)

// Frame is one rendered bitmap, tightly packed RGBA.
type Frame struct {
	Pixels []byte
	Width  uint32
	Height uint32
}

// Image wraps the pixels without copying.
func (f Frame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pixels,
		Stride: int(f.Width) * 4,
		Rect:   image.Rect(0, 0, int(f.Width), int(f.Height)),
	}
}

// FrameChannel is a bounded frame queue whose consumer can hang up.
// Closing it is the worker's stop signal.
type FrameChannel struct {
	frames chan Frame
	done   chan struct{}
	once   sync.Once
}

func NewFrameChannel(capacity int) *FrameChannel {
	if capacity < 0 {
		capacity = 0
	}
	return &FrameChannel{
		frames: make(chan Frame, capacity),
		done:   make(chan struct{}),
	}
}

// Frames is the receiving side. It is never closed; select on Done too.
func (fc *FrameChannel) Frames() <-chan Frame { return fc.frames }

// Close is called by the consumer when it stops reading. Safe to call
// more than once.
func (fc *FrameChannel) Close() {
	fc.once.Do(func() { close(fc.done) })
}

func (fc *FrameChannel) Done() <-chan struct{} { return fc.done }

// Closed reports, without blocking, whether the consumer has hung up.
func (fc *FrameChannel) Closed() bool {
	select {
	case <-fc.done:
		return true
	default:
		return false
	}
}

// send blocks while the queue is full. It returns false if the consumer
// hung up or ctx ended first.
func (fc *FrameChannel) send(ctx context.Context, f Frame) bool {
	if fc.Closed() {
		return false
	}
	select {
	case fc.frames <- f:
		return true
	case <-fc.done:
		return false
	case <-ctx.Done():
		return false
	}
}
