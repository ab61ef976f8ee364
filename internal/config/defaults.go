package config

const (
	defaultEchoBaseURL        = "https://echo360.org"
	defaultDataDir            = "~/.local/share/courselens"
	defaultLogDir             = "~/.local/share/courselens/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultThreshold          = 80
	defaultFallbackMin        = 70
	defaultTopK               = 6
	defaultAssignmentMinScore = 90
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Echo: Echo{
			BaseURL: defaultEchoBaseURL,
		},
		Matching: Matching{
			Threshold:          defaultThreshold,
			FallbackMin:        defaultFallbackMin,
			TopK:               defaultTopK,
			AssignmentMinScore: defaultAssignmentMinScore,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
