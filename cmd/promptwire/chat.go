package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/promptwire/promptwire/agent"
	"github.com/promptwire/promptwire/config"
	"github.com/promptwire/promptwire/llm"
	"github.com/promptwire/promptwire/tools"
)

const systemPrompt = "You are a helpful assistant. Use the available tools when they help you answer."

var (
	promptColor    = color.New(color.FgCyan, color.Bold)
	assistantColor = color.New(color.FgGreen)
	errorColor     = color.New(color.FgRed)
	infoColor      = color.New(color.FgYellow)
)

func runChat(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	client, err := config.NewClient(providerName, modelName, cfg, log)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var executor agent.ToolExecutor
	opts := agent.RunOptions{
		System:    systemPrompt,
		MaxTokens: maxTokens,
	}
	if !noTools {
		registry := tools.NewDefaultRegistry(log, nil)
		executor = registry
		opts.Tools = registry.Specs()
	} else {
		executor = tools.NewRegistry(log)
	}
	runner := agent.NewRunner(client, executor, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infoColor.Println("promptwire chat. Type 'exit' or Ctrl-D to quit.")

	var messages []llm.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		promptColor.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return
		}

		messages = append(messages, llm.NewTextMessage(llm.RoleUser, input))

		answer, err := sendTurn(ctx, runner, messages, opts)
		if err != nil {
			if llm.IsCancelled(err) {
				return
			}
			errorColor.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		messages = append(messages, llm.NewTextMessage(llm.RoleAssistant, answer))
	}
}

func sendTurn(ctx context.Context, runner *agent.Runner, messages []llm.Message, opts agent.RunOptions) (string, error) {
	if stream {
		assistantColor.Print("assistant> ")
		answer, err := runner.RunStream(ctx, messages, opts, func(fragment string) error {
			assistantColor.Print(fragment)
			return nil
		})
		fmt.Println()
		return answer, err
	}

	answer, err := runner.Run(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	assistantColor.Printf("assistant> %s\n", answer)
	return answer, nil
}
