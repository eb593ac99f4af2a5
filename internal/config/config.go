package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config is the connector's full runtime configuration, loaded from
// LTSM_CONFIG / --config (JSON or YAML) with LTSM_-prefixed environment
// overrides, via viper and mapstructure tags.
type Config struct {
	// Listener
	ListenAddress        string `mapstructure:"listen_address"`
	ProtocolType         string `mapstructure:"protocol_type"` // vnc, rdp, spice, auto
	DesktopName          string `mapstructure:"desktop_name"`
	DebugWSListenAddress string `mapstructure:"debug_ws_listen_address"` // empty disables

	// Security
	AuthNone       bool   `mapstructure:"auth_none"`
	AuthVNC        bool   `mapstructure:"auth_vnc"`
	VNCPasswdFile  string `mapstructure:"vnc_passwd_file"`
	AuthVeNCrypt   bool   `mapstructure:"auth_vencrypt"`
	TLSCertFile    string `mapstructure:"tls_cert_file"`
	TLSKeyFile     string `mapstructure:"tls_key_file"`
	TLSCAFile      string `mapstructure:"tls_ca_file"`
	KerberosKeytab string `mapstructure:"kerberos_keytab"` // KRB5_KTNAME

	// Protocol engine
	IdleTimeoutSeconds int `mapstructure:"idle_timeout_seconds"`
	ZlibLevel          int `mapstructure:"zlib_level"`

	// Encoding scheduler
	EncodingWorkers   int `mapstructure:"encoding_workers"`
	EncodingQueueSize int `mapstructure:"encoding_queue_size"`

	// LTSM side-channel multiplexer
	LTSMChannelSpeedDefault string `mapstructure:"ltsm_channel_speed_default"` // slow, medium, fast, unlimited
	LTSMAllowUID            int64  `mapstructure:"ltsm_allow_uid"`             // 0 = unset, disables SO_PEERCRED gating
	LTSMSocketDir           string `mapstructure:"ltsm_socket_dir"`

	// Transfer-log archive sink
	TransferLogProvider       string `mapstructure:"transferlog_provider"` // local, s3, azure, gcs
	TransferLogLocalPath      string `mapstructure:"transferlog_local_path"`
	TransferLogS3Bucket       string `mapstructure:"transferlog_s3_bucket"`
	TransferLogS3Region       string `mapstructure:"transferlog_s3_region"`
	TransferLogAzureAccountURL string `mapstructure:"transferlog_azure_account_url"`
	TransferLogAzureAccount    string `mapstructure:"transferlog_azure_account"`
	TransferLogAzureKey        string `mapstructure:"transferlog_azure_key"`
	TransferLogAzureContainer  string `mapstructure:"transferlog_azure_container"`
	TransferLogGCSBucket      string `mapstructure:"transferlog_gcs_bucket"`

	// Logging configuration
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
}

// Default returns a Config populated with the connector's baseline
// values.
func Default() *Config {
	return &Config{
		ListenAddress: ":5900",
		ProtocolType:  "auto",
		DesktopName:   "ltsm-connector",

		AuthNone: true,

		IdleTimeoutSeconds: 300,
		ZlibLevel:          6,

		EncodingWorkers:   4,
		EncodingQueueSize: 256,

		LTSMChannelSpeedDefault: "medium",

		TransferLogProvider:  "local",
		TransferLogLocalPath: "/var/lib/ltsm-connector/transfers",

		LogLevel:      "info",
		LogFormat:     "text",
		LogMaxSizeMB:  50,
		LogMaxBackups: 3,
	}
}

// Load reads cfgFile (or the default search path) into a Config seeded
// with Default(), applies LTSM_-prefixed environment overrides, then
// validates it. Fatal validation errors block startup; warnings are
// logged and the (possibly clamped) config is returned.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile == "" {
		cfgFile = os.Getenv("LTSM_CONFIG")
	}
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("connector")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("LTSM")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	result := cfg.ValidateTiered()
	for _, err := range result.Warnings {
		slog.Warn("config validation", "error", err)
	}
	if result.HasFatals() {
		for _, err := range result.Fatals {
			slog.Error("config validation fatal", "error", err)
		}
		return nil, fmt.Errorf("config has fatal validation errors: %v", result.Fatals[0])
	}

	return cfg, nil
}

// Save writes cfg to the default config path.
func Save(cfg *Config) error {
	return SaveTo(cfg, "")
}

// SaveTo writes cfg as YAML to cfgFile, or the default config path when
// cfgFile is empty.
func SaveTo(cfg *Config, cfgFile string) error {
	viper.Set("listen_address", cfg.ListenAddress)
	viper.Set("protocol_type", cfg.ProtocolType)
	viper.Set("desktop_name", cfg.DesktopName)
	viper.Set("debug_ws_listen_address", cfg.DebugWSListenAddress)
	viper.Set("auth_none", cfg.AuthNone)
	viper.Set("auth_vnc", cfg.AuthVNC)
	viper.Set("vnc_passwd_file", cfg.VNCPasswdFile)
	viper.Set("auth_vencrypt", cfg.AuthVeNCrypt)
	viper.Set("tls_cert_file", cfg.TLSCertFile)
	viper.Set("tls_key_file", cfg.TLSKeyFile)
	viper.Set("tls_ca_file", cfg.TLSCAFile)
	viper.Set("kerberos_keytab", cfg.KerberosKeytab)
	viper.Set("idle_timeout_seconds", cfg.IdleTimeoutSeconds)
	viper.Set("zlib_level", cfg.ZlibLevel)
	viper.Set("encoding_workers", cfg.EncodingWorkers)
	viper.Set("encoding_queue_size", cfg.EncodingQueueSize)
	viper.Set("ltsm_channel_speed_default", cfg.LTSMChannelSpeedDefault)
	viper.Set("ltsm_allow_uid", cfg.LTSMAllowUID)
	viper.Set("ltsm_socket_dir", cfg.LTSMSocketDir)
	viper.Set("transferlog_provider", cfg.TransferLogProvider)
	viper.Set("transferlog_local_path", cfg.TransferLogLocalPath)
	viper.Set("transferlog_s3_bucket", cfg.TransferLogS3Bucket)
	viper.Set("transferlog_s3_region", cfg.TransferLogS3Region)
	viper.Set("transferlog_azure_account_url", cfg.TransferLogAzureAccountURL)
	viper.Set("transferlog_azure_account", cfg.TransferLogAzureAccount)
	viper.Set("transferlog_azure_key", cfg.TransferLogAzureKey)
	viper.Set("transferlog_azure_container", cfg.TransferLogAzureContainer)
	viper.Set("transferlog_gcs_bucket", cfg.TransferLogGCSBucket)
	viper.Set("log_level", cfg.LogLevel)
	viper.Set("log_format", cfg.LogFormat)
	viper.Set("log_file", cfg.LogFile)
	viper.Set("log_max_size_mb", cfg.LogMaxSizeMB)
	viper.Set("log_max_backups", cfg.LogMaxBackups)

	var cfgPath string
	if cfgFile != "" {
		cfgPath = cfgFile
		dir := filepath.Dir(cfgPath)
		if dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return err
			}
		}
	} else {
		cfgPath = filepath.Join(configDir(), "connector.yaml")
		if err := os.MkdirAll(configDir(), 0700); err != nil {
			return err
		}
	}

	if err := viper.WriteConfigAs(cfgPath); err != nil {
		return err
	}

	// May contain TLS/Azure/S3 credentials.
	return os.Chmod(cfgPath, 0600)
}

// GetDataDir returns the platform-specific data directory for the
// connector (transfer-log local provider root, LTSM socket dir default).
func GetDataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "ltsm-connector", "data")
	case "darwin":
		return "/Library/Application Support/ltsm-connector/data"
	default:
		return "/var/lib/ltsm-connector"
	}
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "ltsm-connector")
	case "darwin":
		return "/Library/Application Support/ltsm-connector"
	default:
		return "/etc/ltsm-connector"
	}
}
