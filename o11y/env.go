package o11y

const (
	ENV                             = "ENV"
	ENV_OTEL_EXPORTER_OTLP_ENDPOINT = "OTEL_EXPORTER_OTLP_ENDPOINT"

	// defaults
	DEFAULT_ENV                = "develop"
	DEFAULT_OTEL_OTLP_ENDPOINT = "http://localhost:4317"
)
