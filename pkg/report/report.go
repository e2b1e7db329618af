package report

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shouni/go-cold-outreach/pkg/batch"
	"github.com/shouni/go-cold-outreach/pkg/types"
)

// Report は1回のバッチ実行の結果を YAML で残すためのレコードです。
// メッセージ本文は CSV 側に出力するため含めません。
type Report struct {
	RunID       string                `yaml:"run_id"`
	GeneratedAt time.Time             `yaml:"generated_at"`
	Analyzer    string                `yaml:"analyzer"`
	Status      batch.Status          `yaml:"status"`
	Output      string                `yaml:"output,omitempty"`
	Stats       batch.Stats           `yaml:"stats"`
	Rejected    []types.RejectedEntry `yaml:"rejected"`
}

// New はプロセッサの現在の状態からレポートを作成します。
func New(p *batch.Processor, analyzerName, output string, now time.Time) Report {
	snap := p.Snapshot()
	rejected := p.Rejected()
	if rejected == nil {
		rejected = []types.RejectedEntry{}
	}
	return Report{
		RunID:       snap.RunID,
		GeneratedAt: now.UTC(),
		Analyzer:    analyzerName,
		Status:      snap.Status,
		Output:      output,
		Stats:       p.Stats(),
		Rejected:    rejected,
	}
}

// Encode はレポートを YAML に変換します。
func (r Report) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("レポートのYAML変換に失敗しました: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("レポートのYAML変換に失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile はレポートを YAML ファイルとして書き出します。
func (r Report) WriteFile(path string) error {
	data, err := r.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("レポートの書き込みに失敗しました (path: %s): %w", path, err)
	}
	return nil
}
