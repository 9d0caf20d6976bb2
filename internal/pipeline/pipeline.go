/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package pipeline runs images through an inference engine and decodes the
// result. Inference happens on a single worker goroutine that owns the
// engine; callers submit images and wait on a reply channel.
package pipeline

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mpromonet/tflite-classifier/internal/classify"
	"github.com/mpromonet/tflite-classifier/internal/log"
)

var (
	// ErrInference wraps engine failures.
	ErrInference = errors.New("inference failed")
	// ErrClosed is returned once the worker has stopped.
	ErrClosed = errors.New("pipeline closed")
)

// Engine consumes an input tensor and produces a score vector.
// Implementations need not be safe for concurrent use.
type Engine interface {
	InputSize() (width, height int)
	Infer(input []float32) ([]float32, error)
}

// Outcome is what a submitted job resolves to.
type Outcome struct {
	Prediction *classify.Prediction
	Err        error
}

type job struct {
	ctx   context.Context
	img   image.Image
	reply chan Outcome
}

// Pipeline classifies images with an Engine.
type Pipeline struct {
	engine Engine
	labels *classify.Labels
	filter imaging.ResampleFilter
	topK   int
	log    *logrus.Logger

	jobs   chan job
	stop   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFilter sets the resampling filter.
func WithFilter(filter imaging.ResampleFilter) Option {
	return func(p *Pipeline) {
		p.filter = filter
	}
}

// WithTopK attaches the k best candidates to each prediction.
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		p.topK = k
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(p *Pipeline) {
		p.log = logger
	}
}

// WithQueue sets how many jobs may wait for the worker.
func WithQueue(n int) Option {
	return func(p *Pipeline) {
		if n >= 0 {
			p.jobs = make(chan job, n)
		}
	}
}

// New returns a pipeline. Call Run to start the worker before Submit or Do.
func New(engine Engine, labels *classify.Labels, opts ...Option) *Pipeline {
	p := &Pipeline{
		engine: engine,
		labels: labels,
		filter: imaging.Linear,
		jobs:   make(chan job),
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = log.Discard()
	}
	return p
}

// Labels returns the label table.
func (p *Pipeline) Labels() *classify.Labels {
	return p.labels
}

// Classify runs one image through the engine on the calling goroutine.
// It must not be called concurrently with itself or with a running worker.
func (p *Pipeline) Classify(img image.Image) (*classify.Prediction, error) {
	if img == nil {
		return nil, classify.ErrNoImage
	}
	width, height := p.engine.InputSize()

	start := time.Now()
	input := classify.Normalize(img, width, height, p.filter)
	preprocess := time.Since(start)

	start = time.Now()
	scores, err := p.engine.Infer(input)
	if err != nil {
		return nil, errors.Wrap(ErrInference, err.Error())
	}
	inference := time.Since(start)

	prediction, err := classify.Decode(scores, p.labels, p.topK)
	if err != nil {
		return nil, err
	}

	p.log.WithFields(log.Fields{
		"source":     img.Bounds().Size().String(),
		"preprocess": preprocess,
		"inference":  inference,
		"class":      prediction.Index,
		"score":      prediction.Score,
	}).Debug(prediction.String())
	return prediction, nil
}

// Run serves submitted jobs until ctx is cancelled. Jobs still queued when
// it returns resolve to ErrClosed. Run must be called at most once.
func (p *Pipeline) Run(ctx context.Context) {
	defer p.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			if err := j.ctx.Err(); err != nil {
				j.reply <- Outcome{Err: err}
				continue
			}
			prediction, err := p.Classify(j.img)
			j.reply <- Outcome{Prediction: prediction, Err: err}
		}
	}
}

func (p *Pipeline) shutdown() {
	close(p.stop)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for {
		select {
		case j := <-p.jobs:
			j.reply <- Outcome{Err: ErrClosed}
		default:
			return
		}
	}
}

// Submit queues img for the worker and returns a channel that receives
// exactly one Outcome.
func (p *Pipeline) Submit(ctx context.Context, img image.Image) <-chan Outcome {
	reply := make(chan Outcome, 1)
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		reply <- Outcome{Err: ErrClosed}
		return reply
	}
	select {
	case p.jobs <- job{ctx: ctx, img: img, reply: reply}:
	case <-ctx.Done():
		reply <- Outcome{Err: ctx.Err()}
	case <-p.stop:
		reply <- Outcome{Err: ErrClosed}
	}
	return reply
}

// Do submits img and waits for its prediction.
func (p *Pipeline) Do(ctx context.Context, img image.Image) (*classify.Prediction, error) {
	select {
	case out := <-p.Submit(ctx, img):
		return out.Prediction, out.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
