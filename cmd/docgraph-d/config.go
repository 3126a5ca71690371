package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rmax-ai/docgraph/pkg/api"
)

const (
	defaultAddr          = "127.0.0.1:8090"
	defaultArtifact      = "static/knowledge-graph.json"
	defaultWebAssetsMode = "embedded"
)

type Config struct {
	Addr          string
	Artifact      string
	ArtifactRoute string
	DocsDir       string
	Manifest      string
	DocsPrefix    string
	WebAssetsMode string
	StaticDir     string
	Watch         bool
	LogLevel      slog.Level
	TLSCert       string
	TLSKey        string
}

func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	watch := false
	if watchEnv := os.Getenv("DOCGRAPH_WATCH"); watchEnv != "" {
		parsed, err := strconv.ParseBool(watchEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DOCGRAPH_WATCH: %w", err)
		}
		watch = parsed
	}

	flagSet := flag.NewFlagSet("docgraph-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagAddr := flagSet.String("addr", addrFromEnv(defaultAddr), "HTTP listen address")
	flagArtifact := flagSet.String("artifact", envOrDefault("DOCGRAPH_ARTIFACT", defaultArtifact), "artifact target: path, sqlite://db or redis://host/db")
	flagRoute := flagSet.String("artifact-route", envOrDefault("DOCGRAPH_ARTIFACT_ROUTE", api.DefaultArtifactRoute), "route serving the raw artifact")
	flagDocs := flagSet.String("docs-dir", os.Getenv("DOCGRAPH_DOCS_DIR"), "rebuild the artifact from this document tree")
	flagManifest := flagSet.String("manifest", os.Getenv("DOCGRAPH_MANIFEST"), "navigation manifest used when rebuilding")
	flagPrefix := flagSet.String("docs-prefix", envOrDefault("DOCGRAPH_DOCS_PREFIX", "docs"), "site route prefix")
	flagWebAssets := flagSet.String("web-assets", envOrDefault("DOCGRAPH_WEB_ASSETS_MODE", defaultWebAssetsMode), "web assets mode: embedded|fs|off")
	flagStatic := flagSet.String("static-dir", os.Getenv("DOCGRAPH_STATIC_DIR"), "site directory when web-assets=fs")
	flagWatch := flagSet.Bool("watch", watch, "reload or rebuild when inputs change")
	flagLogLevel := flagSet.String("log-level", envOrDefault("DOCGRAPH_LOG_LEVEL", "info"), "log level: debug|info|warn|error")
	flagCert := flagSet.String("tls-cert", os.Getenv("DOCGRAPH_TLS_CERT"), "TLS certificate file")
	flagKey := flagSet.String("tls-key", os.Getenv("DOCGRAPH_TLS_KEY"), "TLS key file")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(*flagLogLevel))); err != nil {
		return Config{}, fmt.Errorf("invalid log level: %s", *flagLogLevel)
	}

	config := Config{
		Addr:          strings.TrimSpace(*flagAddr),
		Artifact:      strings.TrimSpace(*flagArtifact),
		ArtifactRoute: strings.TrimSpace(*flagRoute),
		DocsDir:       resolvePath(*flagDocs, cwd),
		Manifest:      strings.TrimSpace(*flagManifest),
		DocsPrefix:    strings.Trim(strings.TrimSpace(*flagPrefix), "/"),
		WebAssetsMode: normalizeWebAssetsMode(*flagWebAssets),
		StaticDir:     strings.TrimSpace(*flagStatic),
		Watch:         *flagWatch,
		LogLevel:      level,
		TLSCert:       resolvePath(*flagCert, cwd),
		TLSKey:        resolvePath(*flagKey, cwd),
	}

	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}
	if config.Artifact == "" {
		return Config{}, errors.New("artifact cannot be empty")
	}
	if !isRemoteTarget(config.Artifact) {
		config.Artifact = resolvePath(config.Artifact, cwd)
	}
	if config.Manifest != "" && config.Manifest != "none" {
		config.Manifest = resolvePath(config.Manifest, cwd)
	}

	if config.WebAssetsMode == "fs" {
		if config.StaticDir == "" {
			return Config{}, errors.New("web-assets=fs requires static-dir")
		}
		config.StaticDir = resolvePath(config.StaticDir, cwd)
	}

	if config.WebAssetsMode != "embedded" && config.WebAssetsMode != "fs" && config.WebAssetsMode != "off" {
		return Config{}, fmt.Errorf("unsupported web-assets mode: %s", config.WebAssetsMode)
	}

	if (config.TLSCert == "") != (config.TLSKey == "") {
		return Config{}, errors.New("tls-cert and tls-key must be set together")
	}

	return config, nil
}

func isRemoteTarget(dsn string) bool {
	for _, scheme := range []string{"sqlite://", "redis://", "rediss://"} {
		if strings.HasPrefix(dsn, scheme) {
			return true
		}
	}
	return false
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func addrFromEnv(fallback string) string {
	if value := os.Getenv("DOCGRAPH_ADDR"); value != "" {
		return value
	}
	if port := os.Getenv("DOCGRAPH_PORT"); port != "" {
		return fmt.Sprintf("127.0.0.1:%s", port)
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}

func normalizeWebAssetsMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "embedded":
		return "embedded"
	case "fs", "dir", "directory":
		return "fs"
	case "off", "disabled", "none":
		return "off"
	default:
		return strings.ToLower(strings.TrimSpace(mode))
	}
}
