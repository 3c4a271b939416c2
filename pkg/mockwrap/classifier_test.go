package mockwrap_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/inercia/go-anthropic-mock/pkg/mockwrap"
)

func TestIsTestCredential(t *testing.T) {
	t.Parallel()

	tests := []struct {
		credential string
		want       bool
	}{
		{"TEST_abc", true},
		{"TEST_", true},
		{"TEST_API_KEY", true},
		{"test_abc", false},
		{"Test_abc", false},
		{"TEST", false},
		{" TEST_abc", false},
		{"sk-ant-api03-abc", false},
		{"XTEST_abc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.credential, func(t *testing.T) {
			assert.Equal(t, tt.want, mockwrap.IsTestCredential(tt.credential))
		})
	}
}

func TestIsTestCredentialPrefixProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		suffix := rapid.String().Draw(t, "suffix")
		if !mockwrap.IsTestCredential(mockwrap.TestMarker + suffix) {
			t.Fatalf("credential with marker prefix not classified as test: %q", suffix)
		}

		other := rapid.String().Draw(t, "other")
		if got := mockwrap.IsTestCredential(other); got != strings.HasPrefix(other, "TEST_") {
			t.Fatalf("IsTestCredential(%q) = %v", other, got)
		}
	})
}

func TestNewHandle(t *testing.T) {
	t.Parallel()

	h, err := mockwrap.NewHandle("TEST_abc", mockwrap.ModeAsync)
	assert.NoError(t, err)
	assert.True(t, h.TestMode())
	assert.Equal(t, mockwrap.ModeAsync, h.Mode())
	assert.Equal(t, "TEST_abc", h.Credential())

	h, err = mockwrap.NewHandle("sk-real", mockwrap.ModeSync)
	assert.NoError(t, err)
	assert.False(t, h.TestMode())
	assert.Equal(t, "sync", h.Mode().String())

	_, err = mockwrap.NewHandle("", mockwrap.ModeSync)
	assert.ErrorIs(t, err, mockwrap.ErrMissingCredential)
}
