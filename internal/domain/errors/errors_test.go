package errors

import "testing"

func TestSentinelErrors(t *testing.T) {
	for name, err := range map[string]error{
		"ErrProjectNotFound":    ErrProjectNotFound,
		"ErrUserNotFound":       ErrUserNotFound,
		"ErrForbidden":          ErrForbidden,
		"ErrInvalidOperation":   ErrInvalidOperation,
		"ErrInvalidCredentials": ErrInvalidCredentials,
		"ErrMalformedContent":   ErrMalformedContent,
	} {
		if err == nil {
			t.Errorf("%s should not be nil", name)
		}
	}
}
