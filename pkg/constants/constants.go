package constants

// Reserved wire keys
const (
	// TypeField holds the registered type tag of a document in its wire form.
	TypeField = "jsonClass"
	// IDField holds the store-assigned identifier of a persisted document.
	IDField = "_id"
	// ElemMatchOperator is the only nested filter operator understood by MatchFilter.
	ElemMatchOperator = "$elemMatch"
)

const (
	// IDLength is the length of identifiers generated by the in-memory store.
	IDLength = 8
	// DeletionReloadDepth bounds how many levels of targeting documents are
	// reloaded before a recursive deletion.
	DeletionReloadDepth = 100
	// MaxAffectedUsers is the number of distinct users a non-admin may affect
	// with a single recursive deletion.
	MaxAffectedUsers = 2
)

// Data source kinds
const (
	SourceSystemInferred = "system_inferred"
	SourceUserSupplied   = "user_supplied"
)
