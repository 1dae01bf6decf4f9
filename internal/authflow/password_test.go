package authflow

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2389/nova-dashboard/internal/novaapi"
)

type fakePasswordAPI struct {
	resetCalls  int
	resetErr    error
	forgotCalls int
	forgotErr   error
}

func (f *fakePasswordAPI) ResetPassword(ctx context.Context, token, newPassword string) error {
	f.resetCalls++
	return f.resetErr
}

func (f *fakePasswordAPI) RequestPasswordReset(ctx context.Context, email string) error {
	f.forgotCalls++
	return f.forgotErr
}

func TestResetPassword_LocalValidation(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		want     string
	}{
		{"empty", "", "", MsgFillAllFields},
		{"missing confirmation", "password1", "", MsgFillAllFields},
		{"too short", "short", "short", MsgPasswordTooShort},
		{"mismatch", "password1", "password2", MsgPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakePasswordAPI{}
			out := ResetPassword(t.Context(), api, "tok", tt.password, tt.confirm)
			assert.False(t, out.Success)
			assert.NotNil(t, out.Invalid)
			assert.Equal(t, tt.want, out.Message)
			assert.Equal(t, 0, api.resetCalls)
		})
	}
}

func TestResetPassword_Valid(t *testing.T) {
	api := &fakePasswordAPI{}
	out := ResetPassword(t.Context(), api, "tok", "password1", "password1")
	assert.True(t, out.Success)
	assert.Equal(t, MsgResetSucceeded, out.Message)
	assert.Equal(t, 1, api.resetCalls)
}

func TestResetPassword_BackendFailure(t *testing.T) {
	api := &fakePasswordAPI{resetErr: &novaapi.Error{Kind: novaapi.KindValidation, Status: http.StatusBadRequest}}
	out := ResetPassword(t.Context(), api, "tok", "password1", "password1")
	assert.False(t, out.Success)
	assert.Nil(t, out.Invalid)
	assert.Equal(t, MsgResetFailed, out.Message)

	api.resetErr = &novaapi.Error{Kind: novaapi.KindValidation, Status: http.StatusBadRequest, Detail: "Token expired"}
	out = ResetPassword(t.Context(), api, "tok", "password1", "password1")
	assert.Equal(t, "Token expired", out.Message)
}

func TestForgotPassword_UniformSuccess(t *testing.T) {
	errs := []error{
		nil,
		&novaapi.Error{Kind: novaapi.KindNotFoundOrStale, Status: http.StatusNotFound, Detail: "No such user"},
		&novaapi.Error{Kind: novaapi.KindServer, Status: http.StatusInternalServerError},
	}
	var outcomes []ForgotOutcome
	for _, err := range errs {
		out := ForgotPassword(t.Context(), &fakePasswordAPI{forgotErr: err}, "ada@example.com")
		outcomes = append(outcomes, out)
	}
	for _, out := range outcomes {
		assert.Equal(t, outcomes[0], out)
		assert.True(t, out.Sent)
		assert.Empty(t, out.Message)
	}
}

func TestForgotPassword_TransportError(t *testing.T) {
	api := &fakePasswordAPI{forgotErr: &novaapi.Error{Kind: novaapi.KindTransport, Err: errors.New("timeout")}}
	out := ForgotPassword(t.Context(), api, "ada@example.com")
	assert.False(t, out.Sent)
	assert.Equal(t, MsgTryAgain, out.Message)
}

func TestForgotPassword_EmptyEmail(t *testing.T) {
	api := &fakePasswordAPI{}
	out := ForgotPassword(t.Context(), api, "  ")
	assert.False(t, out.Sent)
	assert.Equal(t, MsgEnterEmail, out.Message)
	assert.Equal(t, 0, api.forgotCalls)
}

func TestValidateSignup(t *testing.T) {
	assert.Equal(t, MsgFillAllFields, ValidateSignup("", "password1", "Biz").Message)
	assert.Equal(t, MsgFillAllFields, ValidateSignup("a@b.c", "password1", " ").Message)
	assert.Equal(t, MsgPasswordTooShort, ValidateSignup("a@b.c", "pw", "Biz").Message)
	assert.Nil(t, ValidateSignup("a@b.c", "password1", "Biz"))
}

func TestValidateLogin(t *testing.T) {
	assert.NotNil(t, ValidateLogin("", "pw"))
	assert.NotNil(t, ValidateLogin("a@b.c", ""))
	assert.Nil(t, ValidateLogin("a@b.c", "pw"))
}
