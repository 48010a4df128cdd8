package main

import (
	"fmt"
	"os"

	"taskpad/internal/config"
	"taskpad/internal/storage"
	"taskpad/internal/task"
	"taskpad/internal/ui"
)

func main() {
	cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	todos := task.NewStore(store)
	sorter := task.NewSorter(store)

	if err := ui.Run(todos, sorter, store, cfg); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
