package format

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-catena/lacos-sub000/internal/notify"
)

type sessionView struct {
	State   string `json:"state"`
	Route   string `json:"current_route"`
	Pending string `json:"pending_invite,omitempty"`
	Signed  bool   `json:"signed"`
	secret  string
}

func TestGetFormatterUnknown(t *testing.T) {
	_, err := GetFormatter(&bytes.Buffer{}, "xml", false)
	assert.Error(t, err)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f, err := GetFormatter(&buf, "json-compact", false)
	require.NoError(t, err)

	require.NoError(t, f.Format(sessionView{State: "anonymous", Route: "Login", secret: "x"}))
	assert.Equal(t, `{"state":"anonymous","current_route":"Login","signed":false}`+"\n", buf.String())
}

func TestYAMLFormatterUsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).Format(sessionView{State: "authenticated", Pending: "ABC123", Signed: true}))
	out := buf.String()
	assert.Contains(t, out, "pending_invite: ABC123")
	assert.Contains(t, out, "signed: true")
	assert.NotContains(t, out, "secret")
}

func TestTableFormatterRecord(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf, false).Format(&sessionView{State: "loading", Route: "Welcome"}))
	out := buf.String()
	assert.Contains(t, out, "Current Route")
	assert.Contains(t, out, "Welcome")
	assert.NotContains(t, out, "Pending Invite")
}

func TestTableFormatterRows(t *testing.T) {
	var buf bytes.Buffer
	rows := []map[string]any{
		{"key": "@lacos:user", "present": true},
		{"key": "@lacos:token", "present": false},
	}
	require.NoError(t, NewTableFormatter(&buf, false).Format(rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Key")
	assert.Contains(t, lines[2], "false")
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter(&buf).Format(map[string]any{"b_key": 2, "a_key": nil}))
	assert.Equal(t, "A Key: N/A\nB Key: 2\n", buf.String())

	buf.Reset()
	require.NoError(t, NewTextFormatter(&buf).Format([]sessionView{}))
	assert.Equal(t, "No data\n", buf.String())
}

func TestFormatHeader(t *testing.T) {
	assert.Equal(t, "Invite Code", formatHeader("inviteCode"))
	assert.Equal(t, "Current Route", formatHeader("current_route"))
	assert.Equal(t, "Id", formatHeader("id"))
}

func TestPresenter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf, false)
	ev := notify.NewLocalizer("en").Event(notify.Error, notify.KeyDuplicateEmail)
	ev.Modal = true
	ev.Focus = "email"

	p.Notify(context.Background(), ev)
	out := buf.String()
	assert.Contains(t, out, "[x] E-mail already registered")
	assert.Contains(t, out, "(campo: email)")
	assert.Equal(t, 2, strings.Count(out, "----------------------------------------\n"))
}
