package cli

import "flag"

// Flags holds all command-line flag values
type Flags struct {
	ConfigFile  *string
	OutputDir   *string
	Workers     *int
	Report      *bool
	Verbose     *bool
	MetricsAddr *string
	UpPct       *float64
	DownPct     *float64
	Version     *bool
}

// ParseFlags defines and parses command-line flags
func ParseFlags() *Flags {
	flags := &Flags{
		ConfigFile:  flag.String("config", "", "Path to engine configuration file (required)"),
		OutputDir:   flag.String("output", "results", "Output directory for reports"),
		Workers:     flag.Int("workers", 0, "Parallel run workers (0 = all CPUs)"),
		Report:      flag.Bool("report", true, "Generate CSV and Excel reports"),
		Verbose:     flag.Bool("verbose", false, "Print the per-run trade log"),
		MetricsAddr: flag.String("metrics-addr", "", "Prometheus listen address (empty = disabled)"),
		UpPct:       flag.Float64("excursion-up", 10, "Excursion upside target in percent"),
		DownPct:     flag.Float64("excursion-down", 10, "Excursion downside threshold in percent"),
		Version:     flag.Bool("version", false, "Show version and exit"),
	}

	flag.Parse()
	return flags
}

// Validate checks if required flags are provided
func (f *Flags) Validate() error {
	if *f.ConfigFile == "" {
		return &ValidationError{Field: "config", Message: "config file path is required"}
	}
	if *f.UpPct <= 0 || *f.DownPct <= 0 {
		return &ValidationError{Field: "excursion", Message: "excursion thresholds must be positive"}
	}
	return nil
}

// ValidationError represents a flag validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
