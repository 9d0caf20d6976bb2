/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package config reads command line flags. Flag defaults come from the
// environment, which may be seeded from a .env file.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// NoCamera disables camera capture.
const NoCamera = -1

// Config is the process configuration.
type Config struct {
	ModelPath string
	LabelPath string
	Delegate  string
	Threads   int

	Listen    string
	StaticDir string
	Timeout   time.Duration
	Serve     bool

	Image  string
	Camera int
	TopK   int
	Filter string

	LogLevel string
	LogFile  string
}

// Load seeds the environment from envFiles (missing files are ignored) and
// parses args.
func Load(args []string, envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load %s", file)
		}
	}
	return Parse(args)
}

// Parse reads args, using environment variables as defaults.
func Parse(args []string) (*Config, error) {
	var env envReader
	cfg := &Config{}

	fs := flag.NewFlagSet("tflite-classifier", flag.ContinueOnError)
	fs.StringVar(&cfg.ModelPath, "model", env.str("CLASSIFIER_MODEL", "models/model.tflite"), "path to model file")
	fs.StringVar(&cfg.LabelPath, "label", env.str("CLASSIFIER_LABELS", "models/imagenet_labels.txt"), "path to label file")
	fs.StringVar(&cfg.Delegate, "delegate", env.str("CLASSIFIER_DELEGATE", "auto"), "delegate: auto, edgetpu or cpu")
	fs.IntVar(&cfg.Threads, "threads", env.integer("CLASSIFIER_THREADS", 4), "interpreter threads")
	fs.StringVar(&cfg.Listen, "listen", env.str("CLASSIFIER_LISTEN", ":8080"), "HTTP listen address")
	fs.StringVar(&cfg.StaticDir, "static", env.str("CLASSIFIER_STATIC", "./static"), "directory served at /, empty to disable")
	fs.DurationVar(&cfg.Timeout, "timeout", env.duration("CLASSIFIER_TIMEOUT", 30*time.Second), "per request timeout")
	fs.BoolVar(&cfg.Serve, "serve", false, "serve HTTP even when -camera is set")
	fs.StringVar(&cfg.Image, "image", "", "classify this image file and exit")
	fs.IntVar(&cfg.Camera, "camera", env.integer("CLASSIFIER_CAMERA", NoCamera), "camera device id, -1 to disable")
	fs.IntVar(&cfg.TopK, "topk", env.integer("CLASSIFIER_TOPK", 5), "number of candidates reported")
	fs.StringVar(&cfg.Filter, "filter", env.str("CLASSIFIER_FILTER", "linear"), "resample filter: linear, catmullrom or lanczos")
	fs.StringVar(&cfg.LogLevel, "log-level", env.str("CLASSIFIER_LOG_LEVEL", "info"), "log level")
	fs.StringVar(&cfg.LogFile, "log-file", env.str("CLASSIFIER_LOG_FILE", ""), "also log to this rotating file")

	if env.err != nil {
		return nil, env.err
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, errors.Errorf("unexpected arguments %v", fs.Args())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that flags cannot.
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return errors.New("model path cannot be empty")
	}
	if c.LabelPath == "" {
		return errors.New("label path cannot be empty")
	}
	if c.Threads < 0 {
		return errors.Errorf("threads must not be negative, got %d", c.Threads)
	}
	if c.Timeout <= 0 {
		return errors.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.Camera < NoCamera {
		return errors.Errorf("invalid camera %d", c.Camera)
	}
	return nil
}

// HasCamera reports whether a camera device is configured.
func (c *Config) HasCamera() bool {
	return c.Camera != NoCamera
}

// envReader keeps the first malformed variable it meets.
type envReader struct {
	err error
}

func (e *envReader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.fail(errors.Wrapf(err, "parse %s", key))
		return def
	}
	return i
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(errors.Wrapf(err, "parse %s", key))
		return def
	}
	return d
}

func (e *envReader) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}
