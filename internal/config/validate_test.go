package config

import (
	"fmt"
	"strings"
	"testing"
)

func TestValidateTieredMissingListenAddressIsFatal(t *testing.T) {
	cfg := Default()
	cfg.ListenAddress = ""
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("empty listen_address should be fatal")
	}
}

func TestValidateTieredBadListenAddressIsFatal(t *testing.T) {
	cfg := Default()
	cfg.ListenAddress = "not-a-host-port"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("unparseable listen_address should be fatal")
	}
}

func TestValidateTieredUnknownProtocolTypeIsFatal(t *testing.T) {
	cfg := Default()
	cfg.ProtocolType = "x11forward"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("unknown protocol_type should be fatal")
	}
}

func TestValidateTieredNoSecurityTypeIsFatal(t *testing.T) {
	cfg := Default()
	cfg.AuthNone = false
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("no enabled security type should be fatal")
	}
}

func TestValidateTieredAuthVNCWithoutPasswdFileIsFatal(t *testing.T) {
	cfg := Default()
	cfg.AuthNone = false
	cfg.AuthVNC = true
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("auth_vnc without vnc_passwd_file should be fatal")
	}
}

func TestValidateTieredAuthVeNCryptWithoutTLSIsFatal(t *testing.T) {
	cfg := Default()
	cfg.AuthNone = false
	cfg.AuthVeNCrypt = true
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("auth_vencrypt without TLS cert/key should be fatal")
	}
}

func TestValidateTieredIdleTimeoutClampingIsWarning(t *testing.T) {
	cfg := Default()
	cfg.IdleTimeoutSeconds = -5
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("clamped idle timeout should be warning, not fatal: %v", result.Fatals)
	}
	if cfg.IdleTimeoutSeconds != 0 {
		t.Fatalf("IdleTimeoutSeconds = %d, want 0 (clamped)", cfg.IdleTimeoutSeconds)
	}
}

func TestValidateTieredZlibLevelClamping(t *testing.T) {
	cfg := Default()
	cfg.ZlibLevel = 99
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("clamped zlib level should be warning: %v", result.Fatals)
	}
	if cfg.ZlibLevel != 9 {
		t.Fatalf("ZlibLevel = %d, want 9", cfg.ZlibLevel)
	}
}

func TestValidateTieredEncodingWorkersClamping(t *testing.T) {
	cfg := Default()
	cfg.EncodingWorkers = 0
	cfg.EncodingQueueSize = 0
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("clamped encoding settings should be warning: %v", result.Fatals)
	}
	if cfg.EncodingWorkers != 1 {
		t.Fatalf("EncodingWorkers = %d, want 1", cfg.EncodingWorkers)
	}
	if cfg.EncodingQueueSize != 1 {
		t.Fatalf("EncodingQueueSize = %d, want 1", cfg.EncodingQueueSize)
	}
}

func TestValidateTieredUnknownSpeedNameIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LTSMChannelSpeedDefault = "ludicrous"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("unknown speed name should not be fatal")
	}
	found := false
	for _, err := range result.Warnings {
		if strings.Contains(err.Error(), "ludicrous") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected warning about unknown speed name")
	}
	if cfg.LTSMChannelSpeedDefault != "medium" {
		t.Fatalf("LTSMChannelSpeedDefault = %q, want medium (fallback)", cfg.LTSMChannelSpeedDefault)
	}
}

func TestValidateTieredUnknownLogLevelIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("unknown log level should not be fatal")
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for unknown log level")
	}
}

func TestValidateTieredInvalidLogFormatIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("invalid log format should not be fatal")
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for invalid log format")
	}
}

func TestHasFatals(t *testing.T) {
	r := ValidationResult{}
	if r.HasFatals() {
		t.Fatal("HasFatals() on empty result should be false")
	}
	r.Fatals = append(r.Fatals, fmt.Errorf("test error"))
	if !r.HasFatals() {
		t.Fatal("HasFatals() should be true with a fatal error")
	}
}

func TestAllErrorsReturnsBoth(t *testing.T) {
	cfg := Default()
	cfg.ProtocolType = "bogus"           // fatal
	cfg.LogFormat = "xml"                // warning
	result := cfg.ValidateTiered()

	all := result.AllErrors()
	if len(all) < 2 {
		t.Fatalf("AllErrors() returned %d errors, expected at least 2 (fatals + warnings)", len(all))
	}
}

func TestValidConfigHasNoErrors(t *testing.T) {
	cfg := Default()
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("valid config has fatals: %v", result.Fatals)
	}
	if len(result.Warnings) > 0 {
		t.Fatalf("valid config has warnings: %v", result.Warnings)
	}
}
