package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shouni/go-cold-outreach/internal/config"
	"github.com/shouni/go-cold-outreach/pkg/analyzer"
	"github.com/shouni/go-cold-outreach/pkg/batch"
	"github.com/shouni/go-cold-outreach/pkg/csvexport"
	"github.com/shouni/go-cold-outreach/pkg/inspect"
	"github.com/shouni/go-cold-outreach/pkg/remote"
	"github.com/shouni/go-cold-outreach/pkg/types"
)

type stubFetcher struct{ body string }

func (s stubFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return []byte(s.body), nil
}

func testConfig(t *testing.T, mode config.AnalyzerMode) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Analyzer:   string(mode),
		AnalyzeURL: "http://localhost:5000/analyze",
		Output:     filepath.Join(dir, "mensagens_prospeccao.csv"),
	}
}

func TestBuildAnalyzer(t *testing.T) {
	t.Run("rules", func(t *testing.T) {
		a, err := BuildAnalyzer(testConfig(t, config.ModeRules), Dependencies{})
		require.NoError(t, err)
		assert.IsType(t, &analyzer.Rules{}, a)
	})
	t.Run("remote", func(t *testing.T) {
		a, err := BuildAnalyzer(testConfig(t, config.ModeRemote), Dependencies{MaxRetries: 1})
		require.NoError(t, err)
		assert.IsType(t, &remote.Analyzer{}, a)
	})
	t.Run("remote_invalid_endpoint", func(t *testing.T) {
		cfg := testConfig(t, config.ModeRemote)
		cfg.AnalyzeURL = ""
		_, err := BuildAnalyzer(cfg, Dependencies{})
		assert.ErrorContains(t, err, "委譲アナライザーの初期化エラー")
	})
	t.Run("page", func(t *testing.T) {
		a, err := BuildAnalyzer(testConfig(t, config.ModePage), Dependencies{Fetcher: stubFetcher{}})
		require.NoError(t, err)
		assert.IsType(t, &inspect.Analyzer{}, a)
	})
	t.Run("page_without_fetcher", func(t *testing.T) {
		_, err := BuildAnalyzer(testConfig(t, config.ModePage), Dependencies{})
		assert.ErrorContains(t, err, "Fetcher が指定されていません")
	})
}

func TestGenerate_Rules(t *testing.T) {
	cfg := testConfig(t, config.ModeRules)
	cfg.ReportPath = filepath.Join(filepath.Dir(cfg.Output), "run.yaml")

	var progress []string
	p, err := NewProcessor(cfg, Dependencies{Progress: batch.ProgressFunc(func(current, total int) {
		progress = append(progress, fmt.Sprintf("%d/%d", current, total))
	})})
	require.NoError(t, err)

	raw := "https://usemegavest.com.br\n\nnot a url\nhttps://instagram.com/lojapraiaazul\n"
	outcome, err := Generate(context.Background(), p, cfg, raw, nil)
	require.NoError(t, err)

	assert.True(t, outcome.CSVWritten)
	assert.False(t, outcome.Interrupted)
	assert.Equal(t, batch.StatusCompleted, outcome.Snapshot.Status)
	assert.Equal(t, batch.Stats{Processed: 2, Ignored: 1, Total: 3}, outcome.Stats)
	assert.Equal(t, []string{"1/3", "2/3", "3/3"}, progress)

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	records, err := csvexport.Decode(string(data))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Mariana", records[0].ContactLabel)
	assert.Equal(t, "Carolina", records[1].ContactLabel)

	reportData, err := os.ReadFile(cfg.ReportPath)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(reportData, &decoded))
	assert.Equal(t, "rules", decoded["analyzer"])
	assert.Equal(t, "completed", decoded["status"])
}

func TestGenerate_NoValidURL(t *testing.T) {
	cfg := testConfig(t, config.ModeRules)
	p, err := NewProcessor(cfg, Dependencies{})
	require.NoError(t, err)

	outcome, err := Generate(context.Background(), p, cfg, "not a url\nhttp://", nil)
	assert.ErrorIs(t, err, ErrNoValidURL)
	assert.False(t, outcome.CSVWritten)
	assert.Equal(t, 2, outcome.Stats.Ignored)

	_, statErr := os.Stat(cfg.Output)
	assert.True(t, os.IsNotExist(statErr), "処理済みが0件の場合はCSVを書き出しません")
}

func TestGenerate_RemoteFailuresAreRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(t, config.ModeRemote)
	cfg.AnalyzeURL = server.URL + "/analyze"
	p, err := NewProcessor(cfg, Dependencies{MaxRetries: 0})
	require.NoError(t, err)

	outcome, err := Generate(context.Background(), p, cfg, "https://a.com\nhttps://b.com", nil)
	assert.ErrorIs(t, err, ErrNoValidURL)
	assert.Equal(t, batch.StatusCompleted, outcome.Snapshot.Status)

	rejected := p.Rejected()
	require.Len(t, rejected, 2)
	assert.Equal(t, types.FailureAnalysis, rejected[0].Kind)
	assert.Contains(t, rejected[0].Reason, "ステータスコード 400")
}

func TestGenerate_InterruptedWritesPartialCSV(t *testing.T) {
	cfg := testConfig(t, config.ModeRules)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := NewProcessor(cfg, Dependencies{Progress: batch.ProgressFunc(func(current, total int) {
		if current == 1 {
			cancel()
		}
	})})
	require.NoError(t, err)

	outcome, err := Generate(ctx, p, cfg, "https://a.com\nhttps://b.com\nhttps://c.com", nil)
	require.NoError(t, err)
	assert.True(t, outcome.Interrupted)
	assert.True(t, outcome.CSVWritten)
	assert.Equal(t, batch.StatusPaused, outcome.Snapshot.Status)
	assert.Equal(t, 1, outcome.Snapshot.Cursor)
}

func TestGenerate_WaitsForResume(t *testing.T) {
	cfg := testConfig(t, config.ModeRules)
	resumed := make(chan struct{}, 1)

	var p *batch.Processor
	var pausedAt []int
	p, err := NewProcessor(cfg, Dependencies{Progress: batch.ProgressFunc(func(current, total int) {
		if current == 1 && p.Pause() {
			pausedAt = append(pausedAt, p.Snapshot().Cursor)
			go func() {
				time.Sleep(10 * time.Millisecond)
				if p.Resume() {
					resumed <- struct{}{}
				}
			}()
		}
	})})
	require.NoError(t, err)

	outcome, err := Generate(context.Background(), p, cfg, "https://a.com\nhttps://b.com\nhttps://c.com", resumed)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, pausedAt)
	assert.False(t, outcome.Interrupted)
	assert.Equal(t, batch.StatusCompleted, outcome.Snapshot.Status)
	assert.Equal(t, 3, outcome.Stats.Processed)
}

func TestGenerate_CancelWhilePaused(t *testing.T) {
	cfg := testConfig(t, config.ModeRules)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var p *batch.Processor
	p, err := NewProcessor(cfg, Dependencies{Progress: batch.ProgressFunc(func(current, total int) {
		if current == 2 {
			p.Pause()
			cancel()
		}
	})})
	require.NoError(t, err)

	outcome, err := Generate(ctx, p, cfg, "https://a.com\nhttps://b.com\nhttps://c.com", make(chan struct{}))
	require.NoError(t, err)
	assert.True(t, outcome.Interrupted)
	assert.Equal(t, batch.StatusPaused, outcome.Snapshot.Status)
	assert.Equal(t, 2, outcome.Stats.Processed)
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("á", 250)
	records := []types.ProcessedRecord{
		{SourceURL: "https://a.com", ContactLabel: "Mariana", Message: "Oi,\nMariana"},
		{SourceURL: "https://b.com", ContactLabel: "Carolina", Message: long},
		{SourceURL: "https://c.com"},
		{SourceURL: "https://d.com"},
		{SourceURL: "https://e.com"},
	}

	items, remaining := Preview(records)
	require.Len(t, items, 3)
	assert.Equal(t, 2, remaining)
	assert.Equal(t, "Oi, Mariana...", items[0].Excerpt)
	assert.Equal(t, strings.Repeat("á", 200)+"...", items[1].Excerpt)
	assert.Equal(t, "+ 2 mensagens no CSV", FormatRemaining(remaining))

	items, remaining = Preview(records[:1])
	assert.Len(t, items, 1)
	assert.Equal(t, 0, remaining)
	assert.Empty(t, FormatRemaining(remaining))
}
