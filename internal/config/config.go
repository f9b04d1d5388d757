package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Configuration system:
// - the [analyzer] section controls analyze-time behavior (spec §6.3 CLI flags double as overrides)
// - the [server] section controls the optional post-analysis metrics server (SPEC_FULL.md supplement)
// - the [logging] section follows the same multi-writer shape throughout the module

// AppConfig represents the complete locktrace-analyze configuration.
type AppConfig struct {
	// Server configuration for the optional post-analysis metrics endpoint.
	Server ServerConfig `toml:"server"`

	// Analyzer pass configuration.
	Analyzer AnalyzerConfig `toml:"analyzer"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings for the post-analysis metrics endpoint.
type ServerConfig struct {
	// Enable serving the report's metrics over HTTP after analysis completes (default: false).
	Enabled bool `toml:"enabled"`

	// Listen address (default: "localhost:9189").
	ListenAddress string `toml:"listen_address"`

	// Metrics endpoint path (default: "/metrics").
	MetricsPath string `toml:"metrics_path"`

	// Enable pprof endpoint for debugging (default: false).
	PprofEnabled bool `toml:"pprof_enabled"`
}

// ResolverConfig contains settings for the external symbol-resolver subprocess (spec §4.2.9).
type ResolverConfig struct {
	// Path to the resolver executable (default: "addr2line").
	Path string `toml:"path"`

	// Timeout per resolution request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// AnalyzerConfig contains settings for the analysis passes.
type AnalyzerConfig struct {
	// Resolver configuration.
	Resolver ResolverConfig `toml:"resolver"`

	// Include the co-occurrence pass, which is O(h^2) per event (spec §4.2.8). Opt-in.
	Cooccurrence CooccurrenceConfig `toml:"cooccurrence"`

	// Include the usage-group trail pass if a usage-group blob is present (spec §6.3 -Q).
	UsageGroup bool `toml:"usage_group"`
}

// CooccurrenceConfig contains settings for the lock co-occurrence pass.
type CooccurrenceConfig struct {
	// Enable the pass (default: false, per spec §4.2.8 "must be declared as slow and be opt-in").
	Enabled bool `toml:"enabled"`

	// Maximum number of ranked pairs to emit into the correlation graph (default: 75).
	TopK int `toml:"top_k"`
}

// LoggingConfig mirrors the multi-writer logging shape used throughout the module.
type LoggingConfig struct {
	// Default logging settings applied to all loggers.
	Defaults LogDefaults `toml:"defaults"`

	// Output configurations - can have multiple outputs.
	Outputs []LogOutput `toml:"outputs"`
}

// LogDefaults contains default logger settings.
type LogDefaults struct {
	// Log level (default: "info").
	Level string `toml:"level"`

	// Include caller information (default: 0).
	Caller int `toml:"caller"`

	// Time field name (default: "time").
	TimeField string `toml:"time_field"`

	// Time format (default: "" = RFC3339 with milliseconds).
	TimeFormat string `toml:"time_format"`

	// Time zone (default: "Local").
	TimeLocation string `toml:"time_location"`
}

// LogOutput represents a single output configuration.
type LogOutput struct {
	// Output type: "console", "file", "syslog".
	Type string `toml:"type"`

	// Enable this output (default: true).
	Enabled bool `toml:"enabled"`

	// Configuration specific to the output type.
	Console *ConsoleConfig `toml:"console,omitempty"`
	File    *FileConfig    `toml:"file,omitempty"`
	Syslog  *SyslogConfig  `toml:"syslog,omitempty"`
}

// ConsoleConfig contains console/terminal output settings.
type ConsoleConfig struct {
	// Use fast JSON output (default: false).
	FastIO bool `toml:"fast_io"`

	// Output format when fast_io=false (default: "auto").
	Format string `toml:"format"`

	// Enable colored output (default: true).
	ColorOutput bool `toml:"color_output"`

	// Quote string values (default: true).
	QuoteString bool `toml:"quote_string"`

	// Output destination (default: "stderr").
	Writer string `toml:"writer"`

	// Use asynchronous writing (default: false).
	Async bool `toml:"async"`
}

// FileConfig contains file output settings.
type FileConfig struct {
	// Log file path (required).
	Filename string `toml:"filename"`

	// Maximum file size in megabytes (default: 10).
	MaxSize int64 `toml:"max_size"`

	// Maximum number of old log files to keep (default: 7).
	MaxBackups int `toml:"max_backups"`

	// Time format for rotated filenames (default: "2006-01-02T15-04-05").
	TimeFormat string `toml:"time_format"`

	// Use local time for rotation timestamps (default: true).
	LocalTime bool `toml:"local_time"`

	// Include hostname in filename (default: true).
	HostName bool `toml:"host_name"`

	// Include process ID in filename (default: true).
	ProcessID bool `toml:"process_id"`

	// Create directory if it doesn't exist (default: true).
	EnsureFolder bool `toml:"ensure_folder"`

	// Use asynchronous writing (default: true).
	Async bool `toml:"async"`
}

// SyslogConfig contains syslog output settings.
type SyslogConfig struct {
	// Network protocol (default: "udp").
	Network string `toml:"network"`

	// Syslog server address (default: "localhost:514").
	Address string `toml:"address"`

	// Hostname for syslog messages (default: system hostname).
	Hostname string `toml:"hostname"`

	// Syslog tag/program name (default: "locktrace-analyze").
	Tag string `toml:"tag"`

	// Message prefix marker (default: "@cee:").
	Marker string `toml:"marker"`

	// Use asynchronous writing (default: true).
	Async bool `toml:"async"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Enabled:       false,
			ListenAddress: "localhost:9189",
			MetricsPath:   "/metrics",
			PprofEnabled:  false,
		},
		Analyzer: AnalyzerConfig{
			Resolver: ResolverConfig{
				Path:           "addr2line",
				TimeoutSeconds: 5,
			},
			Cooccurrence: CooccurrenceConfig{
				Enabled: false,
				TopK:    75,
			},
			UsageGroup: false,
		},
		Logging: LoggingConfig{
			Defaults: LogDefaults{
				Level:        "info",
				Caller:       0,
				TimeField:    "time",
				TimeFormat:   "",
				TimeLocation: "Local",
			},
			Outputs: []LogOutput{
				{
					Type:    "console",
					Enabled: true,
					Console: &ConsoleConfig{
						FastIO:      false,
						Format:      "auto",
						ColorOutput: true,
						QuoteString: true,
						Writer:      "stderr",
						Async:       false,
					},
				},
				{
					Type:    "file",
					Enabled: false,
					File: &FileConfig{
						Filename:     "logs/locktrace-analyze.log",
						MaxSize:      10,
						MaxBackups:   7,
						TimeFormat:   "2006-01-02T15-04-05",
						LocalTime:    true,
						HostName:     true,
						ProcessID:    true,
						EnsureFolder: true,
						Async:        true,
					},
				},
				{
					Type:    "syslog",
					Enabled: false,
					Syslog: &SyslogConfig{
						Network:  "udp",
						Address:  "localhost:514",
						Tag:      "locktrace-analyze",
						Hostname: "",
						Marker:   "@cee:",
						Async:    true,
					},
				},
			},
		},
	}
}

// LoadConfig loads configuration from a TOML file, falling back to defaults.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	if configPath == "" {
		return config, nil
	}

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("config file not found: %s", configPath)
	}

	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a TOML file.
func SaveConfig(configPath string, config *AppConfig) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", configPath, err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// GenerateExampleConfig generates a TOML configuration file with default values.
func GenerateExampleConfig(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	header := `# locktrace-analyze example configuration.
# This file is auto-generated and serves as an example configuration.
# Copy it to create your own configuration and modify as needed.
#
# Format: TOML (Tom's Obvious, Minimal Language)

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	config := DefaultConfig()
	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks the configuration for errors.
func (c *AppConfig) Validate() error {
	if c.Server.Enabled {
		if c.Server.ListenAddress == "" {
			return fmt.Errorf("server.listen_address cannot be empty when server.enabled is true")
		}
		if c.Server.MetricsPath == "" {
			return fmt.Errorf("server.metrics_path cannot be empty when server.enabled is true")
		}
	}

	if c.Analyzer.Resolver.Path == "" {
		return fmt.Errorf("analyzer.resolver.path cannot be empty")
	}
	if c.Analyzer.Cooccurrence.TopK <= 0 {
		return fmt.Errorf("analyzer.cooccurrence.top_k must be positive")
	}

	hasEnabledOutput := false
	for _, output := range c.Logging.Outputs {
		if output.Enabled {
			hasEnabledOutput = true
			break
		}
	}
	if !hasEnabledOutput {
		return fmt.Errorf("at least one logging output must be enabled")
	}

	return nil
}

// Flags holds the command-line flags that double as config overrides (spec §6.3).
type Flags struct {
	SidecarPath    string
	CorePath       string
	ResolverPath   string
	ReportPath     string
	TraceFormat    string
	UsageGroup     bool
	Cooccurrence   bool
	ConfigPath     string
	GenerateConfig string
	ListenAddress  string
}

// NewConfig creates a new configuration by parsing flags and loading the config file,
// then layering the spec §6.3 CLI flags on top.
func NewConfig() (*AppConfig, *Flags, error) {
	flags := &Flags{}

	flag.StringVar(&flags.SidecarPath, "t", "", "Path to the sidecar metadata file (required).")
	flag.StringVar(&flags.CorePath, "c", "", "Path to a core file, for the symbol resolver.")
	flag.StringVar(&flags.ResolverPath, "r", "", "Path to the symbol resolver executable.")
	flag.StringVar(&flags.ReportPath, "f", "", "Path to write the report to (required).")
	flag.StringVar(&flags.TraceFormat, "T", "", "Report format: html|ascii (default ascii). Both render the statistics report; no per-event trace is emitted.")
	flag.BoolVar(&flags.UsageGroup, "Q", false, "Emit the usage-group trail.")
	flag.BoolVar(&flags.Cooccurrence, "C", false, "Include the co-occurrence graph (slow).")
	flag.StringVar(&flags.ConfigPath, "config", "", "Path to configuration file (optional).")
	flag.StringVar(&flags.GenerateConfig, "generate-config", "", "Generate example config file to specified path and exit.")
	flag.StringVar(&flags.ListenAddress, "web.listen-address", "", "Address to listen on for the post-analysis metrics server.")
	flag.Parse()

	if flags.GenerateConfig != "" {
		if err := GenerateExampleConfig(flags.GenerateConfig); err != nil {
			return nil, nil, fmt.Errorf("error generating example config: %w", err)
		}
		fmt.Printf("Generated %s successfully\n", flags.GenerateConfig)
		return nil, nil, nil
	}

	config := DefaultConfig()
	if flags.ConfigPath != "" {
		var err error
		config, err = LoadConfig(flags.ConfigPath)
		if err != nil {
			return nil, nil, err
		}
	}

	if isFlagPassed("Q") {
		config.Analyzer.UsageGroup = flags.UsageGroup
	}
	if isFlagPassed("C") {
		config.Analyzer.Cooccurrence.Enabled = flags.Cooccurrence
	}
	if isFlagPassed("r") && flags.ResolverPath != "" {
		config.Analyzer.Resolver.Path = flags.ResolverPath
	}
	if isFlagPassed("web.listen-address") {
		config.Server.Enabled = true
		config.Server.ListenAddress = flags.ListenAddress
	}

	if flags.SidecarPath == "" {
		return nil, nil, fmt.Errorf("missing required flag -t (sidecar path)")
	}
	if flags.ReportPath == "" {
		return nil, nil, fmt.Errorf("missing required flag -f (report path)")
	}

	if err := config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, flags, nil
}

// isFlagPassed checks if a flag was explicitly set on the command line.
func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
