package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldClientID    = "client_id"
	FieldInvoiceRef  = "invoice_ref"
	FieldAmountNet   = "amount_net"
	FieldCategory    = "revenue_category"
	FieldFiscalYear  = "fiscal_year"
	FieldTotalMRR    = "total_mrr"
	FieldClientCount = "client_count"
	FieldSnapshotAt  = "snapshot_at"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentForecast = "forecast"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpCompute  = "compute"
	OpIngest   = "ingest"
	OpList     = "list"
	OpSnapshot = "snapshot"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
