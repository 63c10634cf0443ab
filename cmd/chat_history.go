package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/chat"
)

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved chats, most recently updated first",
	RunE:  runChatList,
}

var chatShowCmd = &cobra.Command{
	Use:   "show <chat-id>",
	Short: "Print a saved chat with its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatShow,
}

var chatDeleteCmd = &cobra.Command{
	Use:   "delete <chat-id>",
	Short: "Delete a saved chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatDelete,
}

var chatSearchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search saved messages; any word of the query may match",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChatSearch,
}

var chatCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories in use",
	RunE:  runChatCategories,
}

func init() {
	chatCmd.AddCommand(chatListCmd, chatShowCmd, chatDeleteCmd, chatSearchCmd, chatCategoriesCmd)
	chatListCmd.Flags().String("category", "", "Only list chats in this category")
	chatSearchCmd.Flags().String("category", "", "Only search chats in this category")
}

// withStore opens the chat store for the duration of fn.
func withStore(fn func(store *chat.Store) error) error {
	store, err := openChatStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func runChatList(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	return withStore(func(store *chat.Store) error {
		chats, err := store.ListChats(cmd.Context(), category)
		if err != nil {
			return err
		}
		if chats == nil {
			chats = []chat.Info{}
		}
		return printResult(cmd, chats)
	})
}

func runChatShow(cmd *cobra.Command, args []string) error {
	return withStore(func(store *chat.Store) error {
		c, err := store.LoadChat(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(cmd, c)
	})
}

func runChatDelete(cmd *cobra.Command, args []string) error {
	return withStore(func(store *chat.Store) error {
		if err := store.DeleteChat(cmd.Context(), args[0]); err != nil {
			return err
		}
		return printResult(cmd, map[string]interface{}{"ok": true, "deleted": args[0]})
	})
}

func runChatSearch(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	query := strings.Join(args, " ")
	return withStore(func(store *chat.Store) error {
		hits, err := store.SearchMessages(cmd.Context(), query, category)
		if err != nil {
			return err
		}
		if hits == nil {
			hits = []chat.SearchHit{}
		}
		return printResult(cmd, hits)
	})
}

func runChatCategories(cmd *cobra.Command, args []string) error {
	return withStore(func(store *chat.Store) error {
		cats, err := store.Categories(cmd.Context())
		if err != nil {
			return err
		}
		if cats == nil {
			cats = []string{}
		}
		return printResult(cmd, cats)
	})
}
