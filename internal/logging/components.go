package logging

// Component constants for structured logging
const (
	ComponentStartup  = "startup"
	ComponentConfig   = "config"
	ComponentEngine   = "engine"
	ComponentBatch    = "batch"
	ComponentAPI      = "api"
	ComponentDatabase = "database"
	ComponentStorage  = "storage"
	ComponentLimiter  = "rate-limiter"
)
