// cmd/tools/store-seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"gym-fulfillment/internal/common/config"
	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/fulfillment/pricing"
	"gym-fulfillment/internal/store"
	"gym-fulfillment/pkg/seed"
)

const commandTimeout = 30 * time.Second

func main() {
	loadCmd := flag.NewFlagSet("load", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)

	// Load command flags
	loadPath := loadCmd.String("path", "configs/seed.yaml", "Path to seed file")
	loadConfig := loadCmd.String("config", "", "Path to config file (defaults to CONFIG_PATH lookup)")

	// Validate command flags
	validatePath := validateCmd.String("path", "configs/seed.yaml", "Path to seed file")
	gymsCollection := validateCmd.String("collection", "gyms", "Gyms collection name")

	// Show command flags
	gymID := showCmd.String("gym", "", "Gym document ID (defaults to fulfillment.gym_id)")
	showConfig := showCmd.String("config", "", "Path to config file (defaults to CONFIG_PATH lookup)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "load":
		loadCmd.Parse(os.Args[2:])
		n, err := loadSeed(*loadConfig, *loadPath)
		if err != nil {
			fmt.Printf("Error loading seed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %d documents from %s\n", n, *loadPath)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		f, err := seed.LoadFile(*validatePath)
		if err != nil {
			fmt.Printf("Seed validation failed: %v\n", err)
			os.Exit(1)
		}
		problems := seed.Validate(f, *gymsCollection)
		if len(problems) > 0 {
			for _, p := range problems {
				fmt.Printf("  - %s\n", p)
			}
			fmt.Printf("Seed validation failed: %d problem(s)\n", len(problems))
			os.Exit(1)
		}
		fmt.Println("Seed validation passed.")

	case "show":
		showCmd.Parse(os.Args[2:])
		text, err := showPricing(*showConfig, *gymID)
		if err != nil {
			fmt.Printf("Error reading pricing: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(text)

	case "help":
		fallthrough
	default:
		help()
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func loadSeed(configPath, seedPath string) (int, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return 0, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Driver == config.StoreDriverMemory {
		return 0, fmt.Errorf("store driver %q keeps nothing after exit; seed it via store.seed_path instead", cfg.Store.Driver)
	}

	f, err := seed.LoadFile(seedPath)
	if err != nil {
		return 0, err
	}
	if problems := seed.Validate(f, cfg.Store.GymsCollection); len(problems) > 0 {
		return 0, fmt.Errorf("seed file has %d problem(s), run validate for details", len(problems))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	backend, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer closeStore()

	return seed.Apply(ctx, backend, f)
}

func showPricing(configPath, gymID string) (string, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if gymID == "" {
		gymID = cfg.Fulfillment.GymID
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	backend, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer closeStore()

	if cfg.Store.Driver == config.StoreDriverMemory && cfg.Store.SeedPath != "" {
		f, err := seed.LoadFile(cfg.Store.SeedPath)
		if err != nil {
			return "", err
		}
		if _, err := seed.Apply(ctx, backend, f); err != nil {
			return "", err
		}
	}

	accessor := pricing.NewAccessor(backend, cfg.Store.GymsCollection, logger.NewNoOpLogger())
	summary, found, err := accessor.FetchPricingSummary(ctx, gymID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("gym %s not found in %s", gymID, cfg.Store.GymsCollection)
	}
	return summary.Text, nil
}

func help() {
	fmt.Println("Usage: store-seeder <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  load      Write every document in a seed file to the configured store")
	fmt.Println("            -path <file> -config <file>")
	fmt.Println("  validate  Check a seed file for missing or mistyped pricing fields")
	fmt.Println("            -path <file> -collection <name>")
	fmt.Println("  show      Print the pricing summary a gym would get in chat")
	fmt.Println("            -gym <id> -config <file>")
	fmt.Println("  help      Show this help message")
}
