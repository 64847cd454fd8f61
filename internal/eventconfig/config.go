package eventconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/notiflow/eventchannel/internal/resiliency"
	"github.com/notiflow/eventchannel/internal/sink"
)

// ErrNullArgument is returned by Validate when a required field is
// missing.
var ErrNullArgument = errors.New("eventconfig: required field is nil")

// Config is the per-event-type configuration surface.
type Config struct {
	// TopicID is the remote topic identifier the worker publishes to.
	// Required.
	TopicID string
	// MaxRetryAttempts is the retry budget for transient failures.
	MaxRetryAttempts int
	// UseBoundedCapacity switches between a bounded and unbounded queue.
	UseBoundedCapacity bool
	// BoundedCapacity is the queue depth when bounded.
	BoundedCapacity int
	// AdmissionFilter is an optional CEL expression; see
	// internal/admissionfilter. Empty means admit everything.
	AdmissionFilter string

	// ResiliencyPolicy, if set, overrides the default exponential
	// backoff built from MaxRetryAttempts. Programmatic only — it has no
	// file or environment representation.
	ResiliencyPolicy resiliency.Policy
	// SinkClient, if set, overrides the default SNS-backed sink.
	// Programmatic only — it has no file or environment representation.
	SinkClient sink.Client
}

// Default returns the built-in defaults used when a Config file and
// environment overlay leave a field unset.
func Default() Config {
	return Config{
		MaxRetryAttempts:   3,
		UseBoundedCapacity: true,
		BoundedCapacity:    1_000_000,
	}
}

// Validate reports ErrNullArgument if TopicID is empty.
func (c Config) Validate() error {
	if c.TopicID == "" {
		return fmt.Errorf("%w: TopicID", ErrNullArgument)
	}
	return nil
}

// Policy returns c.ResiliencyPolicy if set, otherwise the default
// exponential backoff built from c.MaxRetryAttempts.
func (c Config) Policy() resiliency.Policy {
	if c.ResiliencyPolicy != nil {
		return c.ResiliencyPolicy
	}
	return resiliency.NewExponentialBackoff(c.MaxRetryAttempts)
}

// fileConfig mirrors Config's serializable fields as pointers so Load
// can tell "absent from the file" apart from "explicitly zero".
type fileConfig struct {
	TopicID            *string `json:"topicId" yaml:"topicId"`
	MaxRetryAttempts   *int    `json:"maxRetryAttempts" yaml:"maxRetryAttempts"`
	UseBoundedCapacity *bool   `json:"useBoundedCapacity" yaml:"useBoundedCapacity"`
	BoundedCapacity    *int    `json:"boundedCapacity" yaml:"boundedCapacity"`
	AdmissionFilter    *string `json:"admissionFilter" yaml:"admissionFilter"`
}

// Load builds a Config for typeName: defaults, then path (if non-empty
// — JSON or YAML, selected by extension), then an environment overlay of
// the form EVENTCHANNEL_<TYPE>_<FIELD>. ResiliencyPolicy/SinkClient are
// never populated by Load; set them on the returned Config in code.
func Load(typeName, path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("eventconfig: read %s: %w", path, err)
		}
		var fc fileConfig
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return Config{}, fmt.Errorf("eventconfig: parse yaml %s: %w", path, err)
			}
		case ".json", "":
			if err := json.Unmarshal(data, &fc); err != nil {
				return Config{}, fmt.Errorf("eventconfig: parse json %s: %w", path, err)
			}
		default:
			return Config{}, fmt.Errorf("eventconfig: unsupported config extension %q", ext)
		}
		applyFile(&cfg, fc)
	}

	applyEnv(&cfg, typeName)
	return cfg, nil
}

func applyFile(cfg *Config, fc fileConfig) {
	if fc.TopicID != nil {
		cfg.TopicID = *fc.TopicID
	}
	if fc.MaxRetryAttempts != nil {
		cfg.MaxRetryAttempts = *fc.MaxRetryAttempts
	}
	if fc.UseBoundedCapacity != nil {
		cfg.UseBoundedCapacity = *fc.UseBoundedCapacity
	}
	if fc.BoundedCapacity != nil {
		cfg.BoundedCapacity = *fc.BoundedCapacity
	}
	if fc.AdmissionFilter != nil {
		cfg.AdmissionFilter = *fc.AdmissionFilter
	}
}

// applyEnv overlays EVENTCHANNEL_<TYPE>_<FIELD> environment variables
// onto cfg, the highest-priority layer in a defaults/file/env overlay
// convention.
func applyEnv(cfg *Config, typeName string) {
	prefix := "EVENTCHANNEL_" + strings.ToUpper(sanitizeEnvSegment(typeName)) + "_"

	if v, ok := os.LookupEnv(prefix + "TOPIC_ID"); ok {
		cfg.TopicID = v
	}
	if v, ok := os.LookupEnv(prefix + "MAX_RETRY_ATTEMPTS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetryAttempts = n
		}
	}
	if v, ok := os.LookupEnv(prefix + "USE_BOUNDED_CAPACITY"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UseBoundedCapacity = b
		}
	}
	if v, ok := os.LookupEnv(prefix + "BOUNDED_CAPACITY"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BoundedCapacity = n
		}
	}
	if v, ok := os.LookupEnv(prefix + "ADMISSION_FILTER"); ok {
		cfg.AdmissionFilter = v
	}
}

// sanitizeEnvSegment swaps anything in typeName that isn't a letter/digit
// for an underscore (applyEnv then upper-cases the result), so a Go type
// name like "pkg.OrderCreated" becomes a legal, readable env prefix
// segment.
func sanitizeEnvSegment(typeName string) string {
	var b strings.Builder
	for _, r := range typeName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
