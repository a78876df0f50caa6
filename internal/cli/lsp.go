package cli

import (
	"github.com/spf13/cobra"

	"github.com/mvp-joe/insert-this/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server on stdio",
	Long: `Run insertthis as a language server speaking LSP over stdin/stdout.

The server keeps open documents in memory and handles two commands through
workspace/executeCommand, both taking [assetUri, documentUri, position]:

  insertThis.insertFile   insert a reference to the asset at the position
  insertThis.dropFile     the same, with the rules used for dropped files

The resulting edits are sent back with workspace/applyEdit. Logs go to
log.file from the configuration, or stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return lsp.NewServer(appConfig, Version).RunStdio()
	},
}

func init() {
	rootCmd.AddCommand(lspCmd)
}
