package widget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnippet(t *testing.T) {
	got := Snippet("42", "Ada's Bakery", "https://api.nova.example", "https://widget.nova.example/")

	assert.True(t, strings.HasPrefix(got, "<!-- Nova AI Widget -->"))
	assert.Contains(t, got, `userId: "42",`)
	assert.Contains(t, got, `businessName: "Ada's Bakery",`)
	assert.Contains(t, got, `apiUrl: "https://api.nova.example"`)
	assert.Contains(t, got, `<script type="module" src="https://widget.nova.example/widget.js"></script>`)
	assert.True(t, strings.HasSuffix(got, "<!-- End Nova AI Widget -->"))
}

func TestSnippet_DefaultBusinessName(t *testing.T) {
	assert.Contains(t, Snippet("1", "  ", "a", "w"), `businessName: "Your Business"`)
}

func TestSnippet_EscapesValues(t *testing.T) {
	got := Snippet("1", `Evil"</script><script>alert(1)`, "a", "w")
	assert.NotContains(t, got, "</script><script>alert")
	assert.Contains(t, got, `Evil\"\u003c/script\u003e`)
}

func TestPreviewURLs(t *testing.T) {
	assert.Equal(t, "https://widget.example/?testMode=true", TestURL("https://widget.example/"))
	assert.Equal(t, "https://widget.example/embed?demo=true", DemoURL("https://widget.example/embed"))
	assert.Equal(t, "https://widget.example/?demo=true&v=2", DemoURL("https://widget.example/?v=2"))
}

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent(strings.NewReader(`{"type":"NOVA_OPEN_SIGNUP","source":"widget","extra":1}`))
	require.NoError(t, err)
	assert.Equal(t, EventOpenSignup, ev.Type)
	assert.False(t, ev.At.IsZero())

	_, err = DecodeEvent(strings.NewReader(`{"type":"NOVA_SELF_DESTRUCT"}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = DecodeEvent(strings.NewReader(`not json`))
	assert.Error(t, err)
}
