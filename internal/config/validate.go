package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationResult splits validation findings into fatals (block
// startup) and warnings (logged, config auto-corrected where possible).
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

// HasFatals reports whether any fatal error was found.
func (r ValidationResult) HasFatals() bool { return len(r.Fatals) > 0 }

// AllErrors returns fatals followed by warnings, for callers that just
// want to print everything.
func (r ValidationResult) AllErrors() []error {
	all := make([]error, 0, len(r.Fatals)+len(r.Warnings))
	all = append(all, r.Fatals...)
	all = append(all, r.Warnings...)
	return all
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validProtocolTypes = map[string]bool{
	"vnc":   true,
	"rdp":   true,
	"spice": true,
	"auto":  true,
}

var validSpeedNames = map[string]bool{
	"slow":      true,
	"medium":    true,
	"fast":      true,
	"unlimited": true,
}

var validTransferLogProviders = map[string]bool{
	"local": true,
	"s3":    true,
	"azure": true,
	"gcs":   true,
}

// ValidateTiered checks cfg, clamping dangerous values to safe defaults
// in place. Fatal findings (unparseable listen address, no security type
// enabled) must block startup; everything else is a warning.
func (c *Config) ValidateTiered() ValidationResult {
	var r ValidationResult

	if c.ListenAddress != "" {
		if _, _, err := net.SplitHostPort(c.ListenAddress); err != nil {
			r.Fatals = append(r.Fatals, fmt.Errorf("listen_address %q is invalid: %w", c.ListenAddress, err))
		}
	} else {
		r.Fatals = append(r.Fatals, fmt.Errorf("listen_address must not be empty"))
	}

	if c.ProtocolType != "" && !validProtocolTypes[strings.ToLower(c.ProtocolType)] {
		r.Fatals = append(r.Fatals, fmt.Errorf("protocol_type %q is not one of vnc, rdp, spice, auto", c.ProtocolType))
	}

	if !c.AuthNone && !c.AuthVNC && !c.AuthVeNCrypt {
		r.Fatals = append(r.Fatals, fmt.Errorf("at least one of auth_none, auth_vnc, auth_vencrypt must be enabled"))
	}

	if c.AuthVNC && c.VNCPasswdFile == "" {
		r.Fatals = append(r.Fatals, fmt.Errorf("auth_vnc requires vnc_passwd_file"))
	}

	if c.AuthVeNCrypt && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		r.Fatals = append(r.Fatals, fmt.Errorf("auth_vencrypt requires tls_cert_file and tls_key_file"))
	}

	if c.TransferLogProvider != "" && !validTransferLogProviders[strings.ToLower(c.TransferLogProvider)] {
		r.Warnings = append(r.Warnings, fmt.Errorf("unknown transferlog_provider %q, falling back to local", c.TransferLogProvider))
		c.TransferLogProvider = "local"
	}

	if c.IdleTimeoutSeconds < 0 {
		r.Warnings = append(r.Warnings, fmt.Errorf("idle_timeout_seconds %d is negative, clamping to 0 (disabled)", c.IdleTimeoutSeconds))
		c.IdleTimeoutSeconds = 0
	} else if c.IdleTimeoutSeconds > 86400 {
		r.Warnings = append(r.Warnings, fmt.Errorf("idle_timeout_seconds %d exceeds maximum 86400, clamping", c.IdleTimeoutSeconds))
		c.IdleTimeoutSeconds = 86400
	}

	if c.ZlibLevel < 0 {
		r.Warnings = append(r.Warnings, fmt.Errorf("zlib_level %d is below minimum 0, clamping", c.ZlibLevel))
		c.ZlibLevel = 0
	} else if c.ZlibLevel > 9 {
		r.Warnings = append(r.Warnings, fmt.Errorf("zlib_level %d exceeds maximum 9, clamping", c.ZlibLevel))
		c.ZlibLevel = 9
	}

	if c.EncodingWorkers < 1 {
		r.Warnings = append(r.Warnings, fmt.Errorf("encoding_workers %d is below minimum 1, clamping", c.EncodingWorkers))
		c.EncodingWorkers = 1
	} else if c.EncodingWorkers > 64 {
		r.Warnings = append(r.Warnings, fmt.Errorf("encoding_workers %d exceeds maximum 64, clamping", c.EncodingWorkers))
		c.EncodingWorkers = 64
	}

	if c.EncodingQueueSize < 1 {
		r.Warnings = append(r.Warnings, fmt.Errorf("encoding_queue_size %d is below minimum 1, clamping", c.EncodingQueueSize))
		c.EncodingQueueSize = 1
	} else if c.EncodingQueueSize > 65536 {
		r.Warnings = append(r.Warnings, fmt.Errorf("encoding_queue_size %d exceeds maximum 65536, clamping", c.EncodingQueueSize))
		c.EncodingQueueSize = 65536
	}

	if c.LTSMChannelSpeedDefault != "" && !validSpeedNames[strings.ToLower(c.LTSMChannelSpeedDefault)] {
		r.Warnings = append(r.Warnings, fmt.Errorf("unknown ltsm_channel_speed_default %q, falling back to medium", c.LTSMChannelSpeedDefault))
		c.LTSMChannelSpeedDefault = "medium"
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	return r
}
