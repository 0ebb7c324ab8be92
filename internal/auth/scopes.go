package auth

// Known OAuth scopes used by the wellness API.
const (
	ScopeRecordsRead  = "records:read"
	ScopeRecordsWrite = "records:write"
	ScopeProfileRead  = "profile:read"
	ScopeProfileWrite = "profile:write"
)

var knownScopes = map[string]struct{}{
	ScopeRecordsRead:  {},
	ScopeRecordsWrite: {},
	ScopeProfileRead:  {},
	ScopeProfileWrite: {},
}
