package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/logger"
	"github.com/spigell/vacancy-bot/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a one-shot search with a chat's stored filter",
	Run: func(cmd *cobra.Command, _ []string) {
		runSearch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Int64P("chat", "c", 0, "chat id whose filter is used. Unknown chats get the default filter.")
	searchCmd.Flags().BoolP("top", "t", false, "sort by salary instead of publication date")
	searchCmd.Flags().Bool("dump", false, "dump all matching postings to a temporary json file")
}

func runSearch(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	c, err := buildComponents(ctx, logger, config)
	if err != nil {
		logger.Fatal("preparing components", zap.Error(err))
	}
	defer c.Close()

	chatID, _ := cmd.Flags().GetInt64("chat")
	top, _ := cmd.Flags().GetBool("top")
	dump, _ := cmd.Flags().GetBool("dump")

	order := search.ByDate
	if top {
		order = search.BySalary
	}

	logger.Info("starting the search", zap.Int64("chat_id", chatID), zap.Stringer("order", order))
	logger.Info(c.store.Get(chatID).Description())

	found, err := c.search.All(ctx, chatID, order)
	if err != nil {
		logger.Fatal("searching postings", zap.Error(err))
	}

	if len(found) == 0 {
		logger.Info("exiting", zap.String("reason", "no postings left after filters"))
		return
	}

	for _, p := range found {
		logger.Info(p.Title,
			zap.String("id", p.ID),
			zap.String("company", p.Company),
			zap.String("city", p.City),
			zap.Bool("remote", p.Remote),
			zap.String("url", p.URL),
			zap.Time("published_at", p.PublishedAt),
		)
	}
	logger.Info("current list of postings", zap.Int("count", len(found)))

	if dump {
		filename, err := search.DumpToTmpFile(found)
		if err != nil {
			logger.Fatal("dump results to file", zap.Error(err))
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
	}
}
