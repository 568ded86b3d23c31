package ports

// Gateway is an ingestion surface that feeds analysis requests into the
// application: the HTTP API, the SMTP sink, or the one-shot CLI.
type Gateway interface {
	// Start starts the gateway; it must not block
	Start() error

	// Stop shuts the gateway down
	Stop() error
}
