// Package main is the entry point for the tierank CLI.
package main

import (
	"github.com/supplelab/tierank/cmd"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/internal/store"
)

func main() {
	cmd.SetStoreManager(store.Manager)
	defer store.CloseStores()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Failed to stop profiling", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
