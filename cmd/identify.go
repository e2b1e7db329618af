package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shouni/go-cold-outreach/pkg/analyzer"
	"github.com/shouni/go-cold-outreach/pkg/batch"
	"github.com/shouni/go-cold-outreach/pkg/identifier"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [URL...]",
	Short: "URLごとに有効性、店舗の識別子、ルールによる宛名を表示します",
	Long:  `引数 (省略時は標準入力) のURLごとに、URLとして有効か、抽出される識別子、rules アナライザーが選ぶ宛名を表として出力します。ネットワークにはアクセスしません。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := args
		if len(entries) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("標準入力の読み取りエラー: %w", err)
			}
			entries = batch.SplitEntries(string(data))
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), msgEmptyInput)
			return errEmptyInput
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "URL\tVALID\tIDENTIFIER\tCONTACT")
		for _, entry := range entries {
			valid := identifier.IsValidURL(entry)
			id, ok := identifier.Extract(entry)

			contact := "-"
			if valid && ok {
				contact = analyzer.Classify(id).ContactLabel
			}
			if !ok {
				id = "-"
			}
			fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", entry, valid, id, contact)
		}
		return w.Flush()
	},
}
