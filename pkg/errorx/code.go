package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Conflict         Code = 100008

	// Workflow codes
	InvalidState       Code = 200001
	InvariantViolation Code = 200002

	// Ledger codes
	InsufficientSupply  Code = 300001
	InsufficientBalance Code = 300002
)

// Aliases used by the ledger error taxonomy.
const (
	Unauthorized    = PermissionDenied
	ValidationError = BadRequest
)
