package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenerateTestCommand(t *testing.T, input string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer, string) {
	t.Helper()
	output := filepath.Join(t.TempDir(), "mensagens_prospeccao.csv")
	t.Setenv("OUTREACH_OUTPUT", output)
	t.Setenv("OUTREACH_ANALYZER", "rules")
	t.Setenv("OUTREACH_PACE_MS", "0")

	var stdout, stderr bytes.Buffer
	c := &cobra.Command{}
	c.SetContext(context.Background())
	c.SetIn(strings.NewReader(input))
	c.SetOut(&stdout)
	c.SetErr(&stderr)
	return c, &stdout, &stderr, output
}

func TestRunGenerate_EmptyInput(t *testing.T) {
	c, _, stderr, _ := newGenerateTestCommand(t, "  \n\n")

	err := runGenerate(c, nil)
	assert.ErrorIs(t, err, errEmptyInput)
	assert.Equal(t, "no urls in input", err.Error())
	assert.Contains(t, stderr.String(), msgEmptyInput)
}

func TestRunGenerate_NoValidURL(t *testing.T) {
	c, stdout, _, output := newGenerateTestCommand(t, "not a url\nhttp://\n")

	require.NoError(t, runGenerate(c, nil))
	assert.Equal(t, msgNoValidURL+"\n", stdout.String())

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunGenerate_WritesCSVAndSummary(t *testing.T) {
	c, stdout, _, output := newGenerateTestCommand(t, "https://usemegavest.com.br\nnot a url\n")

	require.NoError(t, runGenerate(c, nil))
	assert.Contains(t, stdout.String(), "✅ Pronto! 1 mensagens processadas, 1 ignoradas.")
	assert.Contains(t, stdout.String(), "https://usemegavest.com.br (Mariana)")

	_, statErr := os.Stat(output)
	assert.NoError(t, statErr)
}
