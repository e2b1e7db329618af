package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/shouni/go-cold-outreach/pkg/types"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Target は、アナライザーに渡される1件分の入力です。
// ルールベースは Identifier を、委譲アナライザーは URL を主に利用します。
type Target struct {
	URL        string
	Identifier string
}

// Analysis は、メッセージ生成に必要な3つの可変フィールドです。
type Analysis struct {
	ContactLabel    string
	StrengthNote    string
	OpportunityNote string
}

// Result は Ok(Analysis) | Err(reason) のタグ付き結果です。
// ルールベース、委譲、ページインスペクターのすべての実装が同じ型を返します。
type Result struct {
	analysis Analysis
	err      error
}

// Ok は成功した解析結果を返します。
func Ok(a Analysis) Result {
	return Result{analysis: a}
}

// Fail は失敗理由を持つ解析結果を返します。理由が nil の場合も失敗として扱います。
func Fail(reason error) Result {
	if reason == nil {
		reason = ErrNoReason
	}
	return Result{err: reason}
}

// Failf は fmt.Errorf 形式で失敗理由を組み立てます。
func Failf(format string, args ...any) Result {
	return Fail(fmt.Errorf(format, args...))
}

// IsOk は結果が成功かどうかを返します。
func (r Result) IsOk() bool { return r.err == nil }

// Analysis は成功時の解析結果と ok を返します。
func (r Result) Analysis() (Analysis, bool) {
	return r.analysis, r.err == nil
}

// Err は失敗理由を返します。成功時は nil です。
func (r Result) Err() error { return r.err }

// ErrNoReason は、理由が指定されずに失敗した場合の既定エラーです。
var ErrNoReason = errors.New("アナライザーが理由なしで失敗しました")

// Analyzer は、1件の店舗を解析する機能のインターフェースです。
// 実装は失敗をエラーとして返すのではなく、Result の Err として返します。
type Analyzer interface {
	Analyze(ctx context.Context, target Target) Result
}

// Func は関数を Analyzer として扱うためのアダプターです。
type Func func(ctx context.Context, target Target) Result

// Analyze は Analyzer インターフェースを満たします。
func (f Func) Analyze(ctx context.Context, target Target) Result {
	return f(ctx, target)
}

// FromProfile は、委譲アナライザーやページインスペクターが返す SiteProfile を Analysis に変換します。
func FromProfile(p *types.SiteProfile) Analysis {
	if p == nil {
		return Analysis{}
	}
	return Analysis{
		ContactLabel:    p.ContactPerson,
		StrengthNote:    p.Conquista,
		OpportunityNote: p.Oportunidade,
	}
}
