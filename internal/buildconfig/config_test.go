package buildconfig

import "testing"

func TestDefaults(t *testing.T) {
	cfg := defaults()
	if cfg.TrainingConfigFile != "features.conf" {
		t.Errorf("TrainingConfigFile: got %q, want features.conf", cfg.TrainingConfigFile)
	}
	if cfg.IntrospectPort != 8090 {
		t.Errorf("IntrospectPort: got %d, want 8090", cfg.IntrospectPort)
	}
	if cfg.BindAddress != "127.0.0.1" {
		t.Errorf("BindAddress: got %q, want 127.0.0.1", cfg.BindAddress)
	}
}

func TestLoadEnv_OverridesDefaults(t *testing.T) {
	t.Setenv("TRAINING_CONFIG_FILE", "custom.conf")
	t.Setenv("INTROSPECT_PORT", "9999")
	t.Setenv("BIND_ADDRESS", "0.0.0.0")

	cfg := defaults()
	loadEnv(cfg)

	if cfg.TrainingConfigFile != "custom.conf" {
		t.Errorf("TrainingConfigFile: got %q, want custom.conf", cfg.TrainingConfigFile)
	}
	if cfg.IntrospectPort != 9999 {
		t.Errorf("IntrospectPort: got %d, want 9999", cfg.IntrospectPort)
	}
	if cfg.BindAddress != "0.0.0.0" {
		t.Errorf("BindAddress: got %q, want 0.0.0.0", cfg.BindAddress)
	}
}

func TestLoadEnv_InvalidPortIgnored(t *testing.T) {
	t.Setenv("INTROSPECT_PORT", "not-a-number")
	cfg := defaults()
	loadEnv(cfg)
	if cfg.IntrospectPort != 8090 {
		t.Errorf("invalid port should leave the default unchanged, got %d", cfg.IntrospectPort)
	}
}

func TestLoadFile_MissingFileIsOptional(t *testing.T) {
	cfg := defaults()
	loadFile(cfg, "does-not-exist.json")
	if cfg.ModelFile != "model.bin" {
		t.Errorf("missing config file should leave defaults untouched, got %q", cfg.ModelFile)
	}
}
