package cmd

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"regexp"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/dialog"
	"github.com/spigell/vacancy-bot/internal/logger"
)

const (
	PromptType = "✏️ Type a message"
	PromptExit = "exit"
)

var htmlTags = regexp.MustCompile(`</?[a-z]+>`)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Talk to the bot in the terminal instead of telegram",
	Run: func(cmd *cobra.Command, _ []string) {
		console(cmd)
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().Int64P("chat", "c", 1, "chat id used for the conversation")
}

// consoleSender prints replies without telegram markup.
type consoleSender struct{}

func (consoleSender) SendMessage(_ context.Context, _ int64, text string) {
	fmt.Println(html.UnescapeString(htmlTags.ReplaceAllString(text, "")))
	fmt.Println()
}

func console(cmd *cobra.Command) {
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
	machine := dialog.New(logger, c.store, dialog.NewSessions(), c.search, consoleSender{})

	items := []string{PromptType}
	for _, row := range dialog.Keyboard {
		items = append(items, row...)
	}
	items = append(items, PromptExit)

	for {
		choice := promptui.Select{
			Label: "Choose an action",
			Items: items,
			Size:  len(items),
		}

		_, selected, err := choice.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		text := selected
		switch selected {
		case PromptExit:
			return
		case PromptType:
			input := promptui.Prompt{Label: "Message"}
			text, err = input.Run()
			if err != nil {
				if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
					return
				}
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		machine.Handle(ctx, chatID, text)
	}
}
