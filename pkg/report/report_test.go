package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shouni/go-cold-outreach/pkg/analyzer"
	"github.com/shouni/go-cold-outreach/pkg/batch"
)

func completedProcessor(t *testing.T) *batch.Processor {
	t.Helper()
	p, err := batch.New(analyzer.NewRules(), batch.WithPacing(0))
	require.NoError(t, err)

	p.Start("https://usemegavest.com.br\nnot a url\nhttps://praia.com")
	require.NoError(t, p.Run(context.Background()))
	return p
}

func TestReport_Encode(t *testing.T) {
	p := completedProcessor(t)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("BRT", -3*60*60))

	r := New(p, "rules", "mensagens_prospeccao.csv", now)
	data, err := r.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))

	assert.Equal(t, p.Snapshot().RunID, decoded["run_id"])
	assert.Equal(t, "rules", decoded["analyzer"])
	assert.Equal(t, "completed", decoded["status"])
	assert.Equal(t, "mensagens_prospeccao.csv", decoded["output"])
	assert.Equal(t, map[string]any{"processed": 2, "ignored": 1, "total": 3}, decoded["stats"])
	assert.Equal(t, []any{map[string]any{
		"source_url": "not a url",
		"kind":       "validation",
		"reason":     "URLとして不正です",
	}}, decoded["rejected"])
	assert.Equal(t, time.Date(2025, 1, 2, 6, 4, 5, 0, time.UTC), r.GeneratedAt)
}

func TestReport_EmptyRejected(t *testing.T) {
	p, err := batch.New(analyzer.NewRules())
	require.NoError(t, err)

	r := New(p, "rules", "", time.Now())
	assert.NotNil(t, r.Rejected)
	assert.Equal(t, batch.StatusIdle, r.Status)

	data, err := r.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "rejected: []")
	assert.NotContains(t, string(data), "output:")
}

func TestReport_WriteFile(t *testing.T) {
	p := completedProcessor(t)
	path := filepath.Join(t.TempDir(), "run.yaml")

	r := New(p, "rules", "out.csv", time.Now())
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	expected, err := r.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(data))
}
