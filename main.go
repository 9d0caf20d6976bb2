/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mpromonet/tflite-classifier/internal/classify"
	"github.com/mpromonet/tflite-classifier/internal/config"
	"github.com/mpromonet/tflite-classifier/internal/log"
	"github.com/mpromonet/tflite-classifier/internal/pipeline"
	"github.com/mpromonet/tflite-classifier/internal/server"
)

func main() {
	cfg, err := config.Load(os.Args[1:], ".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := log.New(log.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithField("error", err.Error()).Error("classifier failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	filter, err := classify.ParseFilter(cfg.Filter)
	if err != nil {
		return err
	}

	labels, err := classify.LoadLabels(cfg.LabelPath)
	if err != nil {
		return err
	}
	logger.WithFields(log.Fields{"labels": cfg.LabelPath, "count": labels.Len()}).Info("labels loaded")

	model, err := NewModel(ModelConfig{Path: cfg.ModelPath, Delegate: cfg.Delegate, Threads: cfg.Threads}, logger)
	if err != nil {
		return err
	}
	defer model.Close()

	p := pipeline.New(model, labels,
		pipeline.WithFilter(filter),
		pipeline.WithTopK(cfg.TopK),
		pipeline.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var camera *Camera
	if cfg.HasCamera() {
		camera = NewCamera(cfg.Camera, logger)
	}

	switch {
	case cfg.Image != "":
		img, err := classify.OpenImage(cfg.Image)
		if err != nil {
			return err
		}
		return printPrediction(p, img)
	case camera != nil && !cfg.Serve:
		img, err := camera.Capture(ctx)
		if err != nil {
			return errors.Wrap(err, "capture")
		}
		return printPrediction(p, img)
	}

	go p.Run(ctx)

	opts := []server.Option{server.WithLogger(logger)}
	if camera != nil {
		opts = append(opts, server.WithCamera(camera))
	}
	srv := server.New(server.Config{
		Listen:    cfg.Listen,
		StaticDir: cfg.StaticDir,
		Timeout:   cfg.Timeout,
	}, p, opts...)
	return srv.Run(ctx)
}

// printPrediction classifies img on the calling goroutine; no worker is
// running in one-shot mode.
func printPrediction(p *pipeline.Pipeline, img image.Image) error {
	prediction, err := p.Classify(img)
	if err != nil {
		return err
	}
	fmt.Println(prediction.String())
	for _, c := range prediction.Top {
		fmt.Printf("  %4d %-40s %s\n", c.Index, c.Name, classify.FormatConfidence(c.Score))
	}
	return nil
}
