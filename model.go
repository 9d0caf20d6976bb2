/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package main

import (
	"strings"

	"github.com/mattn/go-tflite"
	"github.com/mattn/go-tflite/delegates"
	"github.com/mattn/go-tflite/delegates/edgetpu"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mpromonet/tflite-classifier/internal/classify"
)

// ErrModelLoad is returned when the model or its interpreter cannot be set up.
var ErrModelLoad = errors.New("cannot load model")

// Delegate names.
const (
	DelegateAuto    = "auto"
	DelegateEdgeTPU = "edgetpu"
	DelegateCPU     = "cpu"
)

// ModelConfig selects the model file and how it is executed.
type ModelConfig struct {
	Path     string
	Delegate string
	Threads  int
}

// Model runs a TensorFlow Lite image classifier. It is not safe for
// concurrent use.
type Model struct {
	model    *tflite.Model
	interp   *tflite.Interpreter
	delegate delegates.Delegater
	width    int
	height   int
}

// NewModel loads the model and prepares its interpreter.
func NewModel(cfg ModelConfig, logger *logrus.Logger) (*Model, error) {
	model := tflite.NewModelFromFile(cfg.Path)
	if model == nil {
		return nil, errors.Wrapf(ErrModelLoad, "read %s", cfg.Path)
	}
	m := &Model{model: model}

	options := tflite.NewInterpreterOptions()
	if options == nil {
		m.Close()
		return nil, errors.Wrap(ErrModelLoad, "create interpreter options")
	}
	defer options.Delete()

	if cfg.Threads > 0 {
		options.SetNumThread(cfg.Threads)
	}
	options.SetErrorReporter(func(msg string, _ interface{}) {
		logger.WithField("model", cfg.Path).Warn(msg)
	}, nil)

	delegate, err := selectDelegate(cfg.Delegate, logger)
	if err != nil {
		m.Close()
		return nil, err
	}
	if delegate != nil {
		options.AddDelegate(delegate)
		m.delegate = delegate
	}

	m.interp = tflite.NewInterpreter(model, options)
	if m.interp == nil {
		m.Close()
		return nil, errors.Wrap(ErrModelLoad, "create interpreter")
	}
	if status := m.interp.AllocateTensors(); status != tflite.OK {
		m.Close()
		return nil, errors.Wrapf(ErrModelLoad, "allocate tensors: %v", status)
	}

	input := m.interp.GetInputTensor(0)
	shape := getTensorShape(input)
	if len(shape) != 4 || shape[3] != 3 {
		m.Close()
		return nil, errors.Wrapf(ErrModelLoad, "input shape %v is not NHWC with 3 channels", shape)
	}
	m.height, m.width = shape[1], shape[2]

	output := m.interp.GetOutputTensor(0)
	logger.WithFields(logrus.Fields{
		"model":        cfg.Path,
		"input":        input.Name(),
		"input_shape":  shape,
		"input_type":   input.Type(),
		"output":       output.Name(),
		"output_shape": getTensorShape(output),
		"output_type":  output.Type(),
	}).Info("model loaded")
	return m, nil
}

// selectDelegate returns the hardware delegate to attach, or nil for CPU.
func selectDelegate(name string, logger *logrus.Logger) (delegates.Delegater, error) {
	switch strings.ToLower(name) {
	case "", DelegateCPU:
		return nil, nil
	case DelegateAuto, DelegateEdgeTPU:
	default:
		return nil, errors.Wrapf(ErrModelLoad, "unknown delegate %q", name)
	}

	devices, err := edgetpu.DeviceList()
	if err != nil {
		logger.Warnf("could not get EdgeTPU devices: %v", err)
	}
	if len(devices) == 0 {
		if strings.EqualFold(name, DelegateEdgeTPU) {
			return nil, errors.Wrap(ErrModelLoad, "no EdgeTPU device found")
		}
		logger.Info("no EdgeTPU device found, running on CPU")
		return nil, nil
	}
	logger.WithField("device", devices[0].Path).Info("using EdgeTPU delegate")
	return edgetpu.New(devices[0]), nil
}

func getTensorShape(tensor *tflite.Tensor) []int {
	shape := []int{}
	for idx := 0; idx < tensor.NumDims(); idx++ {
		shape = append(shape, tensor.Dim(idx))
	}
	return shape
}

// InputSize returns the width and height the model expects.
func (m *Model) InputSize() (int, int) {
	return m.width, m.height
}

// Infer fills the input tensor, invokes the interpreter and returns the
// scores of the first output tensor.
func (m *Model) Infer(input []float32) ([]float32, error) {
	in := m.interp.GetInputTensor(0)
	switch in.Type() {
	case tflite.Float32:
		if n := copy(in.Float32s(), input); n != len(input) {
			return nil, errors.Errorf("input tensor holds %d values, got %d", n, len(input))
		}
	case tflite.UInt8:
		q := in.QuantizationParams()
		if n := copy(in.UInt8s(), classify.Quantize(input, q.Scale, q.ZeroPoint)); n != len(input) {
			return nil, errors.Errorf("input tensor holds %d values, got %d", n, len(input))
		}
	default:
		return nil, errors.Errorf("unsupported input type %v", in.Type())
	}

	if status := m.interp.Invoke(); status != tflite.OK {
		return nil, errors.Errorf("invoke: %v", status)
	}

	out := m.interp.GetOutputTensor(0)
	switch out.Type() {
	case tflite.Float32:
		f := out.Float32s()
		scores := make([]float32, len(f))
		copy(scores, f)
		return scores, nil
	case tflite.UInt8:
		q := out.QuantizationParams()
		return classify.Dequantize(out.UInt8s(), q.Scale, q.ZeroPoint), nil
	}
	return nil, errors.Errorf("unsupported output type %v", out.Type())
}

// Close releases the interpreter, the delegate and the model.
func (m *Model) Close() {
	if m.interp != nil {
		m.interp.Delete()
	}
	if m.delegate != nil {
		m.delegate.Delete()
	}
	if m.model != nil {
		m.model.Delete()
	}
}
