package authflow

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Entry
	}{
		{"no token", "", Entry{Kind: EntryNone}},
		{"action without token", "action=verify-email", Entry{Kind: EntryNone}},
		{"verify", "token=abc&action=verify-email", Entry{Kind: EntryVerify, Token: "abc"}},
		{"reset", "token=abc&action=reset-password", Entry{Kind: EntryReset, Token: "abc"}},
		{"bare token verifies", "token=abc", Entry{Kind: EntryVerify, Token: "abc"}},
		{"unknown action verifies", "token=abc&action=other", Entry{Kind: EntryVerify, Token: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, Route(q))
		})
	}
}

func TestEntryLocation(t *testing.T) {
	assert.Equal(t, "/verify?token=a%2Bb", Entry{Kind: EntryVerify, Token: "a+b"}.Location())
	assert.Equal(t, "/reset-password?token=xyz", Entry{Kind: EntryReset, Token: "xyz"}.Location())
	assert.Empty(t, Entry{}.Location())
}

func TestViewStatePath(t *testing.T) {
	assert.Equal(t, "/login", ViewLogin.Path())
	assert.Equal(t, "/signup", ViewSignup.Path())
	assert.Equal(t, "/forgot-password", ViewForgotPassword.Path())
	assert.Equal(t, "/reset-password", ViewResetPassword.Path())
}
