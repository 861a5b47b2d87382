package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldUserID    = "user_id"
	FieldUsername  = "username"
	FieldExpenseID = "expense_id"
	FieldBudgetID  = "budget_id"
	FieldAmount    = "amount"
	FieldCategory  = "category"
	FieldYear      = "year"
	FieldMonth     = "month"
	FieldCount     = "count"
	FieldPath      = "path"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentStorage = "storage"
	ComponentLedger  = "ledger"
	ComponentCLI     = "cli"
)
