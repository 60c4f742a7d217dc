package domain

// Reasoner is the single operation the core exposes to its collaborators:
// one validated patient record in, one complete reasoning result out.
// Implementations must be safe for concurrent use.
type Reasoner interface {
	Reason(record PatientRecord) (*ReasoningResult, error)
}

// ConfigManager defines the interface for configuration access.
type ConfigManager interface {
	GetConfig() *Config
	Validate() error
}
