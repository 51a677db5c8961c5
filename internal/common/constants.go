package common

const (
	// CollectionKeyPrefix namespaces per-collection snapshot blobs inside
	// the local store.
	CollectionKeyPrefix = "db_"

	// Session store keys.
	SessionTokenKey    = "session_token"
	FallbackFlagKey    = "fallback_active"
	FallbackReasonKey  = "fallback_reason"
	CurrentUserKey     = "current_user"
	ChatRelayTopic     = "community_hub_chat"
	PhoneCountryPrefix = "+63"
)
