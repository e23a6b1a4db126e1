package dynamo

// Customer attribute names used in key and update expressions.
const (
	fieldCustomerID   = "customer_id"
	fieldDoNotDisturb = "do_not_disturb"
	fieldUpdatedAt    = "updated_at"
)

// codeConditionalCheckFailed is the cancellation reason reported for a failed
// condition inside a transaction.
const codeConditionalCheckFailed = "ConditionalCheckFailed"
