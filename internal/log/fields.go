package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldSuccess    = "success"
	FieldDuration   = "duration_ms"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldUserAgent  = "user_agent"
	FieldUserID     = "user_id"
	FieldItemID     = "item_id"
	FieldItemKind   = "item_kind"
	FieldAmount     = "amount_cents"
	FieldCategory   = "category"
	FieldOccurrence = "occurrence"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldCount      = "count"
	FieldBackend    = "backend"
	FieldQueue      = "queue"
	FieldExchange   = "exchange"
	FieldSheetsRef  = "sheets_ref"
	FieldAddr       = "addr"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAuth      = "auth"
	ComponentStorage   = "storage"
	ComponentBackend   = "backend"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentExport    = "export"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpList     = "list"
	OpDelete   = "delete"
	OpExpand   = "expand"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpLogin    = "login"
	OpMigrate  = "migrate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
