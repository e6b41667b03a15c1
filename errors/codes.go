package errors

// ErrorCode identifies an application error category
type ErrorCode int32

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1006
	ErrorCode_RATE_LIMITED      ErrorCode = 1007

	// Authentication
	ErrorCode_AUTH_INVALID_TOKEN         ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED         ErrorCode = 2001
	ErrorCode_AUTH_INVALID_CREDENTIALS   ErrorCode = 2002
	ErrorCode_AUTH_USER_NOT_FOUND        ErrorCode = 2003
	ErrorCode_AUTH_USER_ALREADY_EXISTS   ErrorCode = 2004
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN ErrorCode = 2005
	ErrorCode_AUTH_OAUTH_FAILED          ErrorCode = 2006
	ErrorCode_AUTH_WEAK_PASSWORD         ErrorCode = 2007

	// Meetings
	ErrorCode_MEETING_NOT_FOUND      ErrorCode = 3000
	ErrorCode_MEETING_INVALID_STATE  ErrorCode = 3001
	ErrorCode_MEETING_START_FAILED   ErrorCode = 3002
	ErrorCode_MEETING_ACCESS_DENIED  ErrorCode = 3003
	ErrorCode_RECORDING_FAILED       ErrorCode = 3004
	ErrorCode_TRANSCRIPT_NOT_FOUND   ErrorCode = 3005
	ErrorCode_MISSING_RECORDING_URL  ErrorCode = 3006
	ErrorCode_WEBHOOK_INVALID_SOURCE ErrorCode = 3007

	// Voice library
	ErrorCode_VOICE_PROFILE_NOT_FOUND ErrorCode = 4000
	ErrorCode_VOICE_MERGE_CONFLICT    ErrorCode = 4001
	ErrorCode_VOICE_SAMPLE_LIMIT      ErrorCode = 4002

	// AI routing / providers
	ErrorCode_AI_NO_ELIGIBLE_MODEL    ErrorCode = 5000
	ErrorCode_AI_PROVIDER_FAILED      ErrorCode = 5001
	ErrorCode_AI_ALL_PROVIDERS_FAILED ErrorCode = 5002
	ErrorCode_AI_QUOTA_EXCEEDED       ErrorCode = 5003
	ErrorCode_AI_TRANSCRIPTION_FAILED ErrorCode = 5004
	ErrorCode_AI_TTS_FAILED           ErrorCode = 5005
	ErrorCode_PROCESSING_FAILED       ErrorCode = 5006

	// Cost tracking
	ErrorCode_BUDGET_EXCEEDED  ErrorCode = 6000
	ErrorCode_BUDGET_NOT_FOUND ErrorCode = 6001

	// Integrations
	ErrorCode_INTEGRATION_LIVEKIT_FAILED      ErrorCode = 7000
	ErrorCode_INTEGRATION_STORAGE_FAILED      ErrorCode = 7001
	ErrorCode_INTEGRATION_CACHE_FAILED        ErrorCode = 7002
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = 7003

	// Database
	ErrorCode_DB_CONNECTION_FAILED   ErrorCode = 8000
	ErrorCode_DB_QUERY_FAILED        ErrorCode = 8001
	ErrorCode_DB_TRANSACTION_FAILED  ErrorCode = 8002
	ErrorCode_DB_CONSTRAINT_VIOLATED ErrorCode = 8003
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                         "OK",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                       "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:                  "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:               "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:                 "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:                 "INVALID_PAYLOAD",
	ErrorCode_RATE_LIMITED:                    "RATE_LIMITED",
	ErrorCode_AUTH_INVALID_TOKEN:              "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:              "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_CREDENTIALS:        "AUTH_INVALID_CREDENTIALS",
	ErrorCode_AUTH_USER_NOT_FOUND:             "AUTH_USER_NOT_FOUND",
	ErrorCode_AUTH_USER_ALREADY_EXISTS:        "AUTH_USER_ALREADY_EXISTS",
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN:      "AUTH_INVALID_REFRESH_TOKEN",
	ErrorCode_AUTH_OAUTH_FAILED:               "AUTH_OAUTH_FAILED",
	ErrorCode_AUTH_WEAK_PASSWORD:              "AUTH_WEAK_PASSWORD",
	ErrorCode_MEETING_NOT_FOUND:               "MEETING_NOT_FOUND",
	ErrorCode_MEETING_INVALID_STATE:           "MEETING_INVALID_STATE",
	ErrorCode_MEETING_START_FAILED:            "MEETING_START_FAILED",
	ErrorCode_MEETING_ACCESS_DENIED:           "MEETING_ACCESS_DENIED",
	ErrorCode_RECORDING_FAILED:                "RECORDING_FAILED",
	ErrorCode_TRANSCRIPT_NOT_FOUND:            "TRANSCRIPT_NOT_FOUND",
	ErrorCode_MISSING_RECORDING_URL:           "MISSING_RECORDING_URL",
	ErrorCode_WEBHOOK_INVALID_SOURCE:          "WEBHOOK_INVALID_SOURCE",
	ErrorCode_VOICE_PROFILE_NOT_FOUND:         "VOICE_PROFILE_NOT_FOUND",
	ErrorCode_VOICE_MERGE_CONFLICT:            "VOICE_MERGE_CONFLICT",
	ErrorCode_VOICE_SAMPLE_LIMIT:              "VOICE_SAMPLE_LIMIT",
	ErrorCode_AI_NO_ELIGIBLE_MODEL:            "AI_NO_ELIGIBLE_MODEL",
	ErrorCode_AI_PROVIDER_FAILED:              "AI_PROVIDER_FAILED",
	ErrorCode_AI_ALL_PROVIDERS_FAILED:         "AI_ALL_PROVIDERS_FAILED",
	ErrorCode_AI_QUOTA_EXCEEDED:               "AI_QUOTA_EXCEEDED",
	ErrorCode_AI_TRANSCRIPTION_FAILED:         "AI_TRANSCRIPTION_FAILED",
	ErrorCode_AI_TTS_FAILED:                   "AI_TTS_FAILED",
	ErrorCode_PROCESSING_FAILED:               "PROCESSING_FAILED",
	ErrorCode_BUDGET_EXCEEDED:                 "BUDGET_EXCEEDED",
	ErrorCode_BUDGET_NOT_FOUND:                "BUDGET_NOT_FOUND",
	ErrorCode_INTEGRATION_LIVEKIT_FAILED:      "INTEGRATION_LIVEKIT_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED:      "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:        "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:            "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:                 "DB_QUERY_FAILED",
	ErrorCode_DB_TRANSACTION_FAILED:           "DB_TRANSACTION_FAILED",
	ErrorCode_DB_CONSTRAINT_VIOLATED:          "DB_CONSTRAINT_VIOLATED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
