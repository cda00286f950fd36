package auth

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dev-catena/lacos-sub000/internal/models"
)

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader(" 123456 \nlast"))

	got, err := prompt(in, &out, "Código: ")
	require.NoError(t, err)
	assert.Equal(t, "123456", got)
	assert.Equal(t, "Código: ", out.String())

	got, err = prompt(in, &out, "")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = prompt(in, &out, "")
	assert.Error(t, err)
}

func TestParsePatch(t *testing.T) {
	patch, err := parsePatch([]string{"name=Ana Souza", "city=Recife", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ana Souza", "city": "Recife", "note": "a=b"}, patch)

	_, err = parsePatch([]string{"broken"})
	assert.Error(t, err)
	_, err = parsePatch([]string{"=value"})
	assert.Error(t, err)
}

func newRegisterFlags() *cobra.Command {
	cmd := &cobra.Command{Use: "register"}
	addRegisterFlags(cmd)
	return cmd
}

func TestRegisterPayloadFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Ana\nemail: old@x.com\ncity: Recife\n"), 0o600))

	cmd := newRegisterFlags()
	require.NoError(t, cmd.Flags().Set("file", path))
	require.NoError(t, cmd.Flags().Set("email", "ana@x.com"))
	require.NoError(t, cmd.Flags().Set("profile", "Doctor"))

	payload, err := registerPayload(cmd)
	require.NoError(t, err)
	assert.Equal(t, "Ana", payload.Name)
	assert.Equal(t, "ana@x.com", payload.Email)
	assert.Equal(t, "Recife", payload.City)
	assert.Equal(t, models.ProfileDoctor, payload.Profile)
}

func TestWriteFormDropsPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, writeForm(path, models.RegisterPayload{Name: "Ana", Email: "ana@x.com", Password: "secret"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")

	var back models.RegisterPayload
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, "ana@x.com", back.Email)
	assert.Empty(t, back.Password)
}
