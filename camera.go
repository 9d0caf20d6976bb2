/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package main

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// some devices hand out a few empty frames while the sensor warms up
const (
	captureAttempts = 10
	captureBackoff  = 50 * time.Millisecond
)

// Camera grabs single frames from a video device.
type Camera struct {
	device int
	log    *logrus.Logger
	mu     sync.Mutex
}

// NewCamera returns a camera reading from device.
func NewCamera(device int, logger *logrus.Logger) *Camera {
	return &Camera{device: device, log: logger}
}

// Capture opens the device, reads one frame and closes the device again.
func (c *Camera) Capture(ctx context.Context) (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	webcam, err := gocv.OpenVideoCapture(c.device)
	if err != nil {
		return nil, errors.Wrapf(err, "open camera %d", c.device)
	}
	defer webcam.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	for attempt := 1; attempt <= captureAttempts; attempt++ {
		if ok := webcam.Read(&frame); ok && !frame.Empty() {
			c.log.WithFields(logrus.Fields{
				"device":  c.device,
				"attempt": attempt,
				"size":    image.Pt(frame.Cols(), frame.Rows()).String(),
			}).Debug("frame captured")
			img, err := frame.ToImage()
			if err != nil {
				return nil, errors.Wrap(err, "convert frame")
			}
			return img, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(captureBackoff):
		}
	}
	return nil, errors.Errorf("camera %d returned no frame", c.device)
}
