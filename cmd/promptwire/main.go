// Command promptwire is a small REPL over the library: pick a
// provider, chat, and let the model use the built-in tools.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/promptwire/promptwire/config"
	"github.com/promptwire/promptwire/logger"
)

var (
	configPath   string
	providerName string
	modelName    string
	maxTokens    int64
	noTools      bool
	stream       bool

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "promptwire",
	Short: "Unified LLM client for Claude, OpenAI, Gemini, Grok, Ollama, and CLI agents",
	Run:   runChat,
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List providers and whether they are configured",
	Run:   runProviders,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("promptwire v0.1.0")
	},
}

func main() {
	var err error
	log, err = logger.Init()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/promptwire/config.yaml)")
	rootCmd.Flags().StringVarP(&providerName, "provider", "p", "", "provider to chat with (default from config)")
	rootCmd.Flags().StringVarP(&modelName, "model", "m", "", "model override")
	rootCmd.Flags().Int64Var(&maxTokens, "max-tokens", 4096, "response token budget")
	rootCmd.Flags().BoolVar(&noTools, "no-tools", false, "disable the built-in tools")
	rootCmd.Flags().BoolVar(&stream, "stream", true, "stream responses as they arrive")

	rootCmd.AddCommand(providersCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
