package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/promptwire/promptwire/llm"
)

func runProviders(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	registry := cfg.Registry()

	okColor := color.New(color.FgGreen)
	missingColor := color.New(color.FgRed)
	disabledColor := color.New(color.Faint)

	for _, provider := range llm.Providers() {
		kind := providerKind(provider)
		switch {
		case !registry.IsProviderEnabled(provider):
			disabledColor.Printf("%-12s %-5s disabled\n", provider, kind)
		case registry.IsProviderConfigured(provider):
			okColor.Printf("%-12s %-5s configured\n", provider, kind)
		default:
			missingColor.Printf("%-12s %-5s not configured\n", provider, kind)
		}
	}
}

func providerKind(provider string) string {
	if llm.ProviderKind(provider) == llm.ClientKindCLI {
		return "cli"
	}
	return "http"
}
