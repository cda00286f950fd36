package link

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-catena/lacos-sub000/internal/config"
)

func TestShareURL(t *testing.T) {
	assert.Equal(t, "https://lacosapp.com/grupo/ABC123", ShareURL("https://lacosapp.com/grupo/", "ABC123"))
	assert.Equal(t, "https://lacosapp.com/grupo/ABC123", ShareURL("https://lacosapp.com/grupo", "ABC123"))
}

func TestResolverUsesConfiguredRules(t *testing.T) {
	code, ok := resolver().Resolve("https://lacosapp.com/grupo/abc123")
	require.True(t, ok)
	assert.Equal(t, "ABC123", code)

	_, ok = resolver().Resolve("exp://192.168.0.10:8081/--/grupo/ABC123")
	assert.False(t, ok)
}

func TestQRPrintsShareURL(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, runQR(cmd, []string{"abc123"}))
	assert.Contains(t, out.String(), config.Get().DeepLink.ShareBaseURL+"ABC123")

	assert.Error(t, runQR(cmd, []string{"x"}))
}
