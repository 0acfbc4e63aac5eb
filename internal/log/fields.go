package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldWalletID      = "wallet_id"
	FieldCategoryID    = "category_id"
	FieldTxType        = "tx_type"
	FieldAmountCents   = "amount_cents"
	FieldCurrency      = "currency"
	FieldCount         = "count"
	FieldMatchType     = "match_type"
	FieldYear          = "year"
	FieldMonth         = "month"
	FieldDay           = "day"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentLedger   = "ledger"
	ComponentCategory = "category"
	ComponentWallet   = "wallet"
	ComponentAnalysis = "analysis"
	ComponentStorage  = "storage"
	ComponentCache    = "cache"
	ComponentExport   = "export"
)

// Operations defines standard operation names
const (
	OpCreate  = "create"
	OpRead    = "read"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpList    = "list"
	OpSeed    = "seed"
	OpReorder = "reorder"
	OpRecord  = "record"
	OpExport  = "export"
	OpStartup = "startup"
)
