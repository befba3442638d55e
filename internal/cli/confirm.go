package cli

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/dotfold/pkg/commands/cleanup"
	"github.com/arthur-debert/dotfold/pkg/style"
)

// askYesNo prints a [y/N] prompt and reads one line from stdin.
// Anything but an explicit yes declines.
func askYesNo(prompt string) (bool, error) {
	fmt.Printf("%s [y/N]: ", prompt)

	var response string
	_, err := fmt.Scanln(&response)
	if err != nil && err.Error() != "unexpected newline" {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}

// confirmOverwrites lists the real files a deploy would displace and
// asks whether to continue.
func confirmOverwrites(paths []string) (bool, error) {
	fmt.Println("\nThe following paths hold real content that deploy will replace:")
	for _, p := range paths {
		fmt.Printf("  %s %s\n", style.WarningIndicator, style.PathStyle.Render(p))
	}
	fmt.Println()

	return askYesNo("Back up and overwrite these paths?")
}

// confirmRemovals lists the ignored store content cleanup would
// delete and asks whether to continue.
func confirmRemovals(candidates []cleanup.Candidate) (bool, error) {
	fmt.Println("\nThe following ignored content will be removed from the stores:")
	for _, c := range candidates {
		fmt.Printf("  %s %s (%s)\n", style.WarningIndicator, style.PathStyle.Render(c.Logical), c.Tier)
	}
	fmt.Println()

	return askYesNo("Remove these paths?")
}
