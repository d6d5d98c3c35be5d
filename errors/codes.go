package errors

// ErrorCode is the stable, client-facing error identifier
type ErrorCode int32

const (
	ErrorCode_UNSPECIFIED ErrorCode = 0
	ErrorCode_HTTP_OK     ErrorCode = 200

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_PERMISSION_DENIED ErrorCode = 1003
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1004
	ErrorCode_FORBIDDEN         ErrorCode = 1005

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2000

	// Contact requests
	ErrorCode_CONTACT_NOT_FOUND          ErrorCode = 3000
	ErrorCode_CONTACT_ALREADY_ANSWERED   ErrorCode = 3001
	ErrorCode_HOST_NOT_FOUND             ErrorCode = 3002
	ErrorCode_CONTACT_ARCHIVE_TOO_RECENT ErrorCode = 3003

	// Signaling
	ErrorCode_SIGNAL_MALFORMED     ErrorCode = 4000
	ErrorCode_REALTIME_UNAVAILABLE ErrorCode = 4001

	// Integrations
	ErrorCode_INTEGRATION_CACHE_FAILED ErrorCode = 5000
	ErrorCode_DB_QUERY_FAILED          ErrorCode = 5001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNSPECIFIED:                "UNSPECIFIED",
	ErrorCode_HTTP_OK:                    "HTTP_OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_PERMISSION_DENIED:          "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:                  "FORBIDDEN",
	ErrorCode_AUTH_INVALID_TOKEN:         "AUTH_INVALID_TOKEN",
	ErrorCode_CONTACT_NOT_FOUND:          "CONTACT_NOT_FOUND",
	ErrorCode_CONTACT_ALREADY_ANSWERED:   "CONTACT_ALREADY_ANSWERED",
	ErrorCode_HOST_NOT_FOUND:             "HOST_NOT_FOUND",
	ErrorCode_CONTACT_ARCHIVE_TOO_RECENT: "CONTACT_ARCHIVE_TOO_RECENT",
	ErrorCode_SIGNAL_MALFORMED:           "SIGNAL_MALFORMED",
	ErrorCode_REALTIME_UNAVAILABLE:       "REALTIME_UNAVAILABLE",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText renders the code by name in JSON bodies
func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
