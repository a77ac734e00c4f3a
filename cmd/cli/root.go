package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var gatewayURL string

// Color definitions
var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
)

var rootCmd = &cobra.Command{
	Use:   "sentinel-cli",
	Short: "sentinel-cli is the command-line interface for Git Sentinel.",
	Long:  `A CLI for interacting with the Git Sentinel gateway: submitting code for manual review and watching the live progress stream.`,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.PersistentFlags().StringVarP(&gatewayURL, "gateway", "g", "http://localhost:8080", "Base URL of the Git Sentinel gateway")
}
