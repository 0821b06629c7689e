package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/parley-engine/internal/journal"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <journal.json> [journal.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	files := os.Args[1:]
	failed := 0
	for _, filename := range files {
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed++
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d journal files failed validation\n", failed, len(files))
		os.Exit(1)
	}
}

func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("journal file must have .json extension: %s", baseName)
	}

	j, err := journal.Load(filename)
	if err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}

	fmt.Printf("  Setting:  %s\n", j.WorldSetting)
	fmt.Printf("  Turns:    %d\n", len(j.Turns))
	fmt.Printf("  NPCs:     %d\n", len(j.NPCs))
	fmt.Printf("  Outcomes: %d successes, %d failures\n", j.TotalSuccesses, j.TotalFailures)
	fmt.Println("Journal file is valid!")
	return nil
}
