package domain

// ExecutionResult wraps details from the shell command runner.
type ExecutionResult struct {
	Ran        bool
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
	Err        error
}

// GuardRule rejects user command lines matching Pattern (a regular expression).
type GuardRule struct {
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message"`
}
