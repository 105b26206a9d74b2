package commands

import (
	"fmt"

	"github.com/jopamo/hxm/logger"
)

// PrintStartupBanner prints the ANSI-art startup message shown once
// per fresh (non --exit/--restart/--dump-stats) invocation.
func PrintStartupBanner(verbosity int, configPath string) {
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	white := "\033[37m"
	bgBlack := "\033[40m"
	bold := "\033[1m"
	reset := "\033[0m"

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔═══════════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                                 ║\n")
	fmt.Printf("   ║      %s%s%s ██   ██ ██   ██ ███    ███ %s                ║\n", white, bold, bgBlack, reset+cyan+bold)
	fmt.Printf("   ║      %s%s%s ██   ██  ██ ██  ████  ████ %s                ║\n", white, bold, bgBlack, reset+cyan+bold)
	fmt.Printf("   ║      %s%s%s ███████   ███   ██ ████ ██ %s                ║\n", white, bold, bgBlack, reset+cyan+bold)
	fmt.Printf("   ║      %s%s%s ██   ██  ██ ██  ██  ██  ██ %s                ║\n", white, bold, bgBlack, reset+cyan+bold)
	fmt.Printf("   ║      %s%s%s ██   ██ ██   ██ ██      ██ %s                ║\n", white, bold, bgBlack, reset+cyan+bold)
	fmt.Printf("   ║                                                 ║\n")
	fmt.Printf("   ║   %s◷%s tick  %s⇥%s ingest  %s⇓%s commit  %s▤%s stack       ║\n",
		yellow, reset+cyan+bold, green, reset+cyan+bold, yellow, reset+cyan+bold, green, reset+cyan+bold)
	fmt.Printf("   ║                                                 ║\n")
	fmt.Printf("   ╚═════════════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ hxm ───────────────────────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Verbosity: %s\n", green, reset, logger.LevelName(verbosity))
	if configPath != "" {
		fmt.Printf("%s│%s Config:    %s\n", green, reset, configPath)
	}
	fmt.Printf("%s└─────────────────────────────────────────────────┘%s\n\n", green, reset)
}
