package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/chat"
)

var chatExportCmd = &cobra.Command{
	Use:   "export <chat-id>",
	Short: "Export a saved chat to a JSON file",
	Long:  `Write a saved chat to <dir>/chat_<category>_<yyyy-MM-dd_HH-mm>.json, or to stdout with --stdout. The file format is the one "chat import" reads.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runChatExport,
}

var chatImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a chat export file as a new saved chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatImport,
}

func init() {
	chatCmd.AddCommand(chatExportCmd, chatImportCmd)
	chatExportCmd.Flags().StringP("dir", "o", ".", "Directory to write the export file to")
	chatExportCmd.Flags().Bool("stdout", false, "Write the export to stdout instead of a file")
}

// ExportResult is the output of a file export.
type ExportResult struct {
	OK     bool   `yaml:"ok"      json:"ok"`
	ChatID string `yaml:"chat_id" json:"chat_id"`
	Path   string `yaml:"path"    json:"path"`
}

func runChatExport(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	toStdout, _ := cmd.Flags().GetBool("stdout")

	return withStore(func(store *chat.Store) error {
		c, err := store.LoadChat(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		now := time.Now()
		if toStdout {
			return chat.Export(cmd.OutOrStdout(), c, now)
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
		path := filepath.Join(dir, chat.ExportFileName(c.Category, now))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		if err := chat.Export(f, c, now); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write export file: %w", err)
		}
		return printResult(cmd, ExportResult{OK: true, ChatID: c.ID, Path: path})
	})
}

func runChatImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	c, err := chat.Import(f)
	if err != nil {
		return err
	}
	return withStore(func(store *chat.Store) error {
		if err := store.SaveChat(cmd.Context(), c); err != nil {
			return err
		}
		return printResult(cmd, chat.Info{
			ID:           c.ID,
			Title:        c.Title,
			Category:     c.Category,
			MessageCount: len(c.Messages),
			HasSummary:   c.Summary != nil,
			Timestamp:    c.Timestamp,
			LastUpdated:  c.LastUpdated,
		})
	})
}
