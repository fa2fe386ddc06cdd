package gallery

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"
)

const (
	loaderWorkers = 4
	// initial capacity of the request queue, it grows past this
	loaderQueueHint = 100
)

type imageRequest struct {
	ref      ImageRef
	callback func(image.Image)
}

// imageLoader fetches and decodes images on a few background workers.
// Pending requests form a LIFO queue, the most recently shown items are
// served first. Every request is kept until it is served or Reset drops it,
// items are appended once and never ask again.
type imageLoader struct {
	svc Service

	requests []imageRequest
	reqLock  sync.Mutex
	reqCond  *sync.Cond
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
}

func newImageLoader(svc Service) *imageLoader {
	l := &imageLoader{
		svc:      svc,
		requests: make([]imageRequest, 0, loaderQueueHint),
	}
	l.reqCond = sync.NewCond(&l.reqLock)
	l.ctx, l.cancel = context.WithCancel(context.Background())

	for range loaderWorkers {
		go l.worker()
	}
	return l
}

// Load queues ref, callback is called from a worker goroutine on success.
func (l *imageLoader) Load(ref ImageRef, callback func(image.Image)) {
	l.reqLock.Lock()
	defer l.reqLock.Unlock()
	if l.closed {
		return
	}

	l.requests = append(l.requests, imageRequest{ref: ref, callback: callback})
	l.reqCond.Signal()
}

// Reset drops every pending request.
func (l *imageLoader) Reset() {
	l.reqLock.Lock()
	defer l.reqLock.Unlock()
	l.requests = l.requests[:0]
}

// Close stops the workers.
func (l *imageLoader) Close() {
	l.reqLock.Lock()
	l.closed = true
	l.requests = nil
	l.reqLock.Unlock()

	l.cancel()
	l.reqCond.Broadcast()
}

func (l *imageLoader) worker() {
	for {
		l.reqLock.Lock()
		for len(l.requests) == 0 && !l.closed {
			l.reqCond.Wait()
		}
		if l.closed {
			l.reqLock.Unlock()
			return
		}
		last := len(l.requests) - 1
		req := l.requests[last]
		l.requests = l.requests[:last]
		l.reqLock.Unlock()

		img, err := l.fetch(req.ref)
		if err != nil {
			logrus.WithError(err).WithField("file", req.ref.Filename).Debug("loading thumbnail failed")
			continue
		}
		req.callback(img)
	}
}

func (l *imageLoader) fetch(ref ImageRef) (image.Image, error) {
	data, err := fetchImage(l.ctx, l.svc, ref)
	if err != nil {
		return nil, err
	}
	return decodeImage(data)
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}
