package mockwrap

import "strings"

// TestMarker is the credential prefix that routes calls to synthetic responses
const TestMarker = "TEST_"

// IsTestCredential reports whether credential starts with TestMarker. The check is
// case-sensitive and ignores the rest of the string.
func IsTestCredential(credential string) bool {
	return strings.HasPrefix(credential, TestMarker)
}
