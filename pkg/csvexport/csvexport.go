package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shouni/go-cold-outreach/pkg/types"
)

// ----------------------------------------------------------------------
// 定数定義
// ----------------------------------------------------------------------

const (
	// DefaultFilename は、出力CSVの既定ファイル名です。
	DefaultFilename = "mensagens_prospeccao.csv"

	fieldSeparator  = ","
	recordSeparator = "\n"
	escapedNewline  = `\n`
)

// Header は ProcessedRecord のフィールド順に並んだ固定ヘッダーです。
var Header = []string{
	"source_url",
	"store_identifier",
	"contact_label",
	"strength_note",
	"opportunity_note",
	"message",
}

// ----------------------------------------------------------------------
// エンコード
// ----------------------------------------------------------------------

// Encode は、レコードを1レコード1行のCSV文字列に変換します。
// すべてのフィールドをダブルクォートで囲み、" は "" に、改行 (CRLF, LF, 単独の CR) は2文字の \n に置き換えます。
func Encode(records []types.ProcessedRecord) string {
	var b strings.Builder

	b.WriteString(strings.Join(Header, fieldSeparator))
	for _, r := range records {
		b.WriteString(recordSeparator)
		writeRow(&b, fields(r))
	}
	return b.String()
}

// WriteFile は、CSVをUTF-8でファイルに書き出します。
func WriteFile(path string, records []types.ProcessedRecord) error {
	if err := os.WriteFile(path, []byte(Encode(records)), 0o644); err != nil {
		return fmt.Errorf("CSVファイルの書き込みに失敗しました (%s): %w", path, err)
	}
	return nil
}

func fields(r types.ProcessedRecord) []string {
	return []string{
		r.SourceURL,
		r.StoreIdentifier,
		r.ContactLabel,
		r.StrengthNote,
		r.OpportunityNote,
		r.Message,
	}
}

func writeRow(b *strings.Builder, values []string) {
	for i, v := range values {
		if i > 0 {
			b.WriteString(fieldSeparator)
		}
		b.WriteString(quote(v))
	}
}

// quote は1フィールド分のエスケープ規則を適用します。
func quote(v string) string {
	v = strings.ReplaceAll(v, `"`, `""`)
	v = strings.ReplaceAll(v, "\r\n", escapedNewline)
	v = strings.ReplaceAll(v, "\n", escapedNewline)
	v = strings.ReplaceAll(v, "\r", escapedNewline)
	return `"` + v + `"`
}

// ----------------------------------------------------------------------
// デコード (Encode の逆変換)
// ----------------------------------------------------------------------

// Decode は Encode が出力したCSVを読み取り、レコードを復元します。
// "" の復元は encoding/csv に任せ、2文字の \n を改行に戻します。
// 元のフィールドが2文字の \n を含んでいた場合も改行として復元されるため、その区別は失われます。
// また CRLF と CR は LF として復元されます。
func Decode(data string) ([]types.ProcessedRecord, error) {
	return Read(strings.NewReader(data))
}

// Read は io.Reader から Encode 形式のCSVを読み取ります。
func Read(r io.Reader) ([]types.ProcessedRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	// 1. ヘッダーの検証
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("CSVヘッダーの読み込みに失敗しました: %w", err)
	}
	for i, name := range Header {
		if header[i] != name {
			return nil, fmt.Errorf("CSVヘッダーが一致しません: 列%d = %q (期待値: %q)", i+1, header[i], name)
		}
	}

	// 2. レコードの復元
	var records []types.ProcessedRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSVレコードの読み込みに失敗しました: %w", err)
		}
		for i := range row {
			row[i] = strings.ReplaceAll(row[i], escapedNewline, "\n")
		}
		records = append(records, types.ProcessedRecord{
			SourceURL:       row[0],
			StoreIdentifier: row[1],
			ContactLabel:    row[2],
			StrengthNote:    row[3],
			OpportunityNote: row[4],
			Message:         row[5],
		})
	}
	return records, nil
}
