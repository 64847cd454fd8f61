package eventconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("OrderCreated", "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if cfg.MaxRetryAttempts != want.MaxRetryAttempts || cfg.UseBoundedCapacity != want.UseBoundedCapacity || cfg.BoundedCapacity != want.BoundedCapacity {
		t.Fatalf("cfg = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadFromJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "order-created.json")
	body := `{"topicId":"arn:aws:sns:us-east-1:000000000000:order-events-topic","maxRetryAttempts":5}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load("OrderCreated", path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopicID != "arn:aws:sns:us-east-1:000000000000:order-events-topic" {
		t.Fatalf("TopicID = %q", cfg.TopicID)
	}
	if cfg.MaxRetryAttempts != 5 {
		t.Fatalf("MaxRetryAttempts = %d, want 5", cfg.MaxRetryAttempts)
	}
	if cfg.BoundedCapacity != Default().BoundedCapacity {
		t.Fatalf("BoundedCapacity = %d, want default to survive an unset file field", cfg.BoundedCapacity)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "order-created.yaml")
	body := "topicId: arn:aws:sns:us-east-1:000000000000:order-events-topic\nuseBoundedCapacity: false\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load("OrderCreated", path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopicID != "arn:aws:sns:us-east-1:000000000000:order-events-topic" {
		t.Fatalf("TopicID = %q", cfg.TopicID)
	}
	if cfg.UseBoundedCapacity {
		t.Fatalf("UseBoundedCapacity = true, want false")
	}
}

func TestLoadEnvOverlayTakesPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "order-created.json")
	body := `{"topicId":"arn:from-file","maxRetryAttempts":5}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("EVENTCHANNEL_ORDERCREATED_TOPIC_ID", "arn:from-env")
	t.Setenv("EVENTCHANNEL_ORDERCREATED_MAX_RETRY_ATTEMPTS", "7")

	cfg, err := Load("OrderCreated", path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopicID != "arn:from-env" {
		t.Fatalf("TopicID = %q, want env override", cfg.TopicID)
	}
	if cfg.MaxRetryAttempts != 7 {
		t.Fatalf("MaxRetryAttempts = %d, want 7", cfg.MaxRetryAttempts)
	}
}

func TestValidateRequiresTopicID(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() error = nil, want ErrNullArgument")
	}
	cfg.TopicID = "arn:aws:sns:us-east-1:000000000000:order-events-topic"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestPolicyDefaultsToExponentialBackoff(t *testing.T) {
	cfg := Default()
	cfg.MaxRetryAttempts = 4
	if cfg.Policy() == nil {
		t.Fatalf("Policy() = nil")
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "order-created.toml")
	if err := os.WriteFile(path, []byte("topicId = 'x'"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load("OrderCreated", path); err == nil {
		t.Fatalf("Load() error = nil, want unsupported-extension error")
	}
}
