package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/netutil"

	"github.com/ltsm-go/connector/internal/cliproto"
	"github.com/ltsm-go/connector/internal/collaborators"
	"github.com/ltsm-go/connector/internal/config"
	"github.com/ltsm-go/connector/internal/logging"
	"github.com/ltsm-go/connector/internal/ltsm/transferlog"
	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/rfb"
	"github.com/ltsm-go/connector/internal/transport"
	"github.com/ltsm-go/connector/internal/transport/wsdebug"
)

var (
	version         = "0.1.0"
	cfgFile         string
	listenOverride  string
	typeOverride    string
	debugWSOverride string
)

var log = logging.L("main")

var rootCmd = &cobra.Command{
	Use:   "ltsm-connector",
	Short: "LTSM remote-desktop connector",
	Long:  `ltsm-connector serves one remote-desktop client against a local display session over RFB/VNC, with an LTSM side-channel multiplexer for file transfer and session control.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the connector and accept one client connection",
	Run: func(cmd *cobra.Command, args []string) {
		runConnector()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ltsm-connector v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/ltsm-connector/connector.yaml)")
	rootCmd.PersistentFlags().StringVar(&listenOverride, "listen", "", "listen address, overrides config listen_address")
	rootCmd.PersistentFlags().StringVar(&typeOverride, "type", "", "protocol type (vnc, rdp, spice, auto), overrides config protocol_type")
	rootCmd.PersistentFlags().StringVar(&debugWSOverride, "debug-listen", "", "address for the WebSocket debug inspector (e.g. :5901), overrides config debug_ws_listen_address; empty disables it")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogging(cfg *config.Config) {
	var output io.Writer = os.Stdout
	if cfg.LogFile != "" {
		rw, err := logging.NewRotatingWriter(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v (logging to stdout)\n", cfg.LogFile, err)
		} else {
			output = logging.TeeWriter(os.Stdout, rw)
		}
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, output)
	log = logging.L("main")
}

// newArchiver constructs the configured transferlog.Provider and wraps it
// in an Archiver, or returns nil if the provider can't be built (logged,
// not fatal: transfer manifests simply won't be recorded).
func newArchiver(cfg *config.Config) *transferlog.Archiver {
	var provider transferlog.Provider
	var err error

	switch cfg.TransferLogProvider {
	case "s3":
		provider, err = transferlog.NewS3Provider(context.Background(), cfg.TransferLogS3Bucket, cfg.TransferLogS3Region)
	case "azure":
		provider, err = transferlog.NewAzureProvider(cfg.TransferLogAzureAccountURL, cfg.TransferLogAzureAccount, cfg.TransferLogAzureKey, cfg.TransferLogAzureContainer)
	case "gcs":
		provider, err = transferlog.NewGCSProvider(context.Background(), cfg.TransferLogGCSBucket)
	default:
		provider = transferlog.NewLocalProvider(cfg.TransferLogLocalPath)
	}
	if err != nil {
		log.Error("transferlog provider init failed, transfer manifests will not be archived", "provider", cfg.TransferLogProvider, "error", err)
		return nil
	}
	return transferlog.NewArchiver(provider)
}

func securityConfig(cfg *config.Config) (rfb.SecurityConfig, error) {
	sec := rfb.SecurityConfig{
		AuthNone:      cfg.AuthNone,
		AuthVNC:       cfg.AuthVNC,
		VNCPasswdFile: cfg.VNCPasswdFile,
		AuthVeNCrypt:  cfg.AuthVeNCrypt,
	}
	if cfg.AuthVeNCrypt {
		creds := transport.TLSCredentials{}
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			certPEM, err := os.ReadFile(cfg.TLSCertFile)
			if err != nil {
				return rfb.SecurityConfig{}, fmt.Errorf("read tls_cert_file: %w", err)
			}
			keyPEM, err := os.ReadFile(cfg.TLSKeyFile)
			if err != nil {
				return rfb.SecurityConfig{}, fmt.Errorf("read tls_key_file: %w", err)
			}
			creds.CertPEM, creds.KeyPEM = certPEM, keyPEM
		} else {
			creds.AnonDH = true
		}
		if cfg.TLSCAFile != "" {
			caPEM, err := os.ReadFile(cfg.TLSCAFile)
			if err != nil {
				return rfb.SecurityConfig{}, fmt.Errorf("read tls_ca_file: %w", err)
			}
			creds.CAPEM = caPEM
		}
		sec.TLSCreds = creds
	}
	return sec, nil
}

// runConnector loads config, opens the listener, and serves connections
// sequentially until a shutdown signal arrives: config load, logging init,
// start, wait on signal, graceful drain.
func runConnector() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if listenOverride != "" {
		cfg.ListenAddress = listenOverride
	}
	if typeOverride != "" {
		cfg.ProtocolType = typeOverride
	}
	if debugWSOverride != "" {
		cfg.DebugWSListenAddress = debugWSOverride
	}

	initLogging(cfg)

	sec, err := securityConfig(cfg)
	if err != nil {
		log.Error("security config invalid", "error", err)
		os.Exit(1)
	}

	archiver := newArchiver(cfg)

	var debugSrv *http.Server
	if cfg.DebugWSListenAddress != "" {
		debugSrv = startDebugServer(cfg, sec, archiver)
	}

	rawLn, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		log.Error("listen failed", "address", cfg.ListenAddress, "error", err)
		os.Exit(1)
	}
	// Per spec, the connector drives one local X11 display session for one
	// remote client at a time; a second dial blocks at accept until the
	// first session's connection closes, rather than racing two sessions
	// against the same capture/input backend.
	ln := netutil.LimitListener(rawLn, 1)
	defer ln.Close()
	log.Info("connector listening", "address", cfg.ListenAddress, "protocolType", cfg.ProtocolType)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down connector")
		cancel()
		ln.Close()
		if debugSrv != nil {
			debugSrv.Close()
		}
	}()

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				wg.Wait()
				log.Info("connector stopped")
				return
			default:
				log.Error("accept failed", "error", err)
				continue
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveConn(conn, cfg, sec, archiver)
		}()
	}
}

// serveConn detects the wire protocol of one accepted connection and
// drives it through the RFB session state machine.
func serveConn(conn net.Conn, cfg *config.Config, sec rfb.SecurityConfig, archiver *transferlog.Archiver) {
	defer conn.Close()

	stream := transport.NewRaw(conn, time.Duration(cfg.IdleTimeoutSeconds)*time.Second)
	kind := cliproto.KindVNC
	if cfg.ProtocolType == "auto" {
		var err error
		kind, err = cliproto.Detect(stream)
		if err != nil {
			log.Warn("protocol detection failed, assuming vnc", "error", err)
		}
	} else if k, err := cliproto.ParseKind(cfg.ProtocolType); err == nil {
		kind = k
	}

	// No real X11/RandR capture backend is wired in this repo; Capture and
	// ManagerBus are external collaborators outside implementation scope, so
	// FakeCapture/FakeManagerBus stand in so the protocol engine
	// is runnable end to end against a synthetic desktop.
	capture := collaborators.NewFakeCapture(1280, 800, pixel.NewTrueColor32())
	bus := &collaborators.FakeManagerBus{}

	sessionCfg := sessionConfig(cfg, sec)

	err := cliproto.Serve(kind, func() error {
		session := rfb.NewSession(conn, sessionCfg, capture, bus)
		if archiver != nil {
			session = session.WithArchiver(archiver)
		}
		log.Info("session starting", "sessionId", session.ID, "protocol", kind.String())
		return session.Serve()
	})
	if err != nil {
		log.Warn("session ended", "protocol", kind.String(), "error", err)
	}
}

// sessionConfig builds the rfb.Config shared by both the raw-TCP listener
// and the wsdebug inspector path.
func sessionConfig(cfg *config.Config, sec rfb.SecurityConfig) rfb.Config {
	return rfb.Config{
		ServerVersion: rfb.Version38,
		Security:      sec,
		DesktopName:   cfg.DesktopName,
		IdleTimeout:   time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
		ZlibLevel:     cfg.ZlibLevel,
	}
}

// startDebugServer starts an HTTP server that upgrades a single path to a
// WebSocket-framed RFB session (internal/transport/wsdebug), for driving
// the protocol engine from a browser-based inspector instead of raw TCP.
// This is a debug/admin surface, not the production client path; it shares
// the same security config, encoding pipeline, and LTSM multiplexer.
func startDebugServer(cfg *config.Config, sec rfb.SecurityConfig, archiver *transferlog.Archiver) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/vnc", func(w http.ResponseWriter, r *http.Request) {
		wsStream, err := wsdebug.Upgrade(w, r)
		if err != nil {
			log.Warn("wsdebug upgrade failed", "error", err)
			return
		}
		capture := collaborators.NewFakeCapture(1280, 800, pixel.NewTrueColor32())
		bus := &collaborators.FakeManagerBus{}
		session := rfb.NewSessionWithStream(wsStream.UnderlyingConn(), wsStream, sessionConfig(cfg, sec), capture, bus)
		if archiver != nil {
			session = session.WithArchiver(archiver)
		}
		log.Info("wsdebug session starting", "sessionId", session.ID, "remote", r.RemoteAddr)
		if err := session.Serve(); err != nil {
			log.Warn("wsdebug session ended", "error", err)
		}
	})

	srv := &http.Server{Addr: cfg.DebugWSListenAddress, Handler: mux}
	go func() {
		log.Info("wsdebug listening", "address", cfg.DebugWSListenAddress, "path", "/debug/vnc")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("wsdebug server failed", "error", err)
		}
	}()
	return srv
}
