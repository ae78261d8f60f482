package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/uiyyiu/Copy-Spark/internal/app"
	"github.com/uiyyiu/Copy-Spark/internal/tui"
)

const (
	version = "1.0.0"
	repoURL = "https://github.com/uiyyiu/Copy-Spark"
)

var (
	flagConfig string
	flagData   string
	flagMock   bool
)

func loadConfig() (app.Config, error) {
	return app.LoadConfig(flagConfig)
}

func openLibrary(cfg app.Config) (app.Library, error) {
	return app.NewSQLiteLibrary(flagData, cfg.Profile.ID)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(app.DefaultLogWriter(), cfg.LogLevel)

	var svc app.ContentService
	if flagMock || cfg.GeminiAPIKey == "" {
		if !flagMock {
			fmt.Fprintln(os.Stderr, "no API key configured, running with canned content (see 'spark setup')")
		}
		svc = &app.MockContentService{}
	} else {
		svc = app.NewGeminiClient(&cfg, logger)
	}
	cache := app.NewChapterCache("", 30*24*time.Hour)
	cache.Cleanup()
	svc = app.NewCachedContentService(svc, cache)

	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	return tui.Run(tui.Deps{Config: cfg, Service: svc, Library: lib, Logger: logger})
}

func setupCmd() *cobra.Command {
	var (
		apiKey string
		model  string
		theme  string
		name   string
		email  string
	)
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Write the config file",
		Long:  "Write API key, model, theme and profile into the config file.\n\nExamples:\n  - spark setup --api-key AIza... --name \"مريم\"\n  - spark setup --theme paper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if apiKey != "" {
				cfg.GeminiAPIKey = apiKey
			}
			if model != "" {
				cfg.Model = model
			}
			if theme != "" {
				cfg.Theme = theme
			}
			if name != "" {
				cfg.Profile.Name = name
				if cfg.Profile.ID == "" {
					cfg.Profile.ID = "local"
				}
			}
			if email != "" {
				cfg.Profile.Email = email
				if cfg.Profile.ID == "" {
					cfg.Profile.ID = "local"
				}
			}
			path := flagConfig
			if path == "" {
				path = app.DefaultConfigPath()
			}
			if err := app.SaveConfig(cfg, path); err != nil {
				return err
			}
			fmt.Printf("config written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key")
	cmd.Flags().StringVar(&model, "model", "", "Gemini model name")
	cmd.Flags().StringVar(&theme, "theme", "", "UI theme: midnight|paper")
	cmd.Flags().StringVar(&name, "name", "", "Display name for the top bar")
	cmd.Flags().StringVar(&email, "email", "", "Profile email")
	return cmd
}

func chatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "Manage saved chat sessions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved chat sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			lib, err := openLibrary(cfg)
			if err != nil {
				return err
			}
			defer lib.Close()
			sums, err := lib.ListChatSessions(app.SurfacePatristic)
			if err != nil {
				return err
			}
			if len(sums) == 0 {
				fmt.Println("no saved chats")
				return nil
			}
			for _, s := range sums {
				fmt.Printf("%s  %-40s  %d messages  %s\n", s.ID, s.Title, s.MessageCount, s.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a chat session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			lib, err := openLibrary(cfg)
			if err != nil {
				return err
			}
			defer lib.Close()
			if err := lib.DeleteChatSession(args[0]); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}

func libraryCmd() *cobra.Command {
	var itemType string
	cmd := &cobra.Command{
		Use:   "library",
		Short: "List saved lessons, games and curricula",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			lib, err := openLibrary(cfg)
			if err != nil {
				return err
			}
			defer lib.Close()
			items, err := lib.ListItems(app.SavedItemType(strings.TrimSpace(itemType)))
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("library is empty")
				return nil
			}
			for _, it := range items {
				fmt.Printf("%s  %-10s  %s  %s\n", it.ID, it.Type, it.CreatedAt.Format("2006-01-02"), it.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&itemType, "type", "", "Filter: lesson|games|curriculum|content")
	return cmd
}

func main() {
	root := &cobra.Command{
		Use:     "spark",
		Short:   "Spark - lesson preparation assistant for Sunday school servants",
		Long:    "Spark (شرارة) prepares lesson plans, games, curricula and Bible study material with Gemini.\n\nRun without arguments for the interactive UI.\n\nFor more information, visit: " + repoURL,
		Version: version,
		RunE:    runTUI,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: user config dir)")
	root.PersistentFlags().StringVar(&flagData, "data", "", "Data directory (default: user cache dir)")
	root.Flags().BoolVar(&flagMock, "mock", false, "Use canned content instead of the Gemini API")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("spark v%s\n", version)
			fmt.Printf("Repository: %s\n", repoURL)
		},
	}

	root.AddCommand(setupCmd(), chatsCmd(), libraryCmd(), versionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
