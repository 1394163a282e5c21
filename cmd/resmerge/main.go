package main

import (
	"fmt"
	"os"

	"github.com/erraggy/resmerge"
	"github.com/erraggy/resmerge/cmd/resmerge/commands"
	"github.com/erraggy/resmerge/internal/cliutil"
)

// commandNames lists every command for typo suggestions.
var commandNames = []string{
	"merge", "update", "inspect", "watch", "manifest", "mcp", "version", "help",
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "version", "-v", "--version":
		cliutil.Writef(os.Stdout, "resmerge %s\n", resmerge.Version())
		if len(args) > 0 && (args[0] == "-l" || args[0] == "--long") {
			cliutil.Writef(os.Stdout, "%s\n", resmerge.BuildInfo())
		}
	case "help", "-h", "--help":
		printUsage()
	case "merge":
		err = commands.HandleMerge(args)
	case "update":
		err = commands.HandleUpdate(args)
	case "inspect":
		err = commands.HandleInspect(args)
	case "watch":
		err = commands.HandleWatch(args)
	case "manifest":
		err = commands.HandleManifest(args)
	case "mcp":
		err = commands.HandleMCP(args)
	default:
		cliutil.Writef(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			cliutil.Writef(os.Stderr, "Did you mean '%s'?\n", suggestion)
		}
		cliutil.Writef(os.Stderr, "\n")
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		cliutil.Writef(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// suggestCommand returns the closest command within edit distance 2, or "".
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := editDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func printUsage() {
	usage := `resmerge - layered resource merger

Usage:
  resmerge <command> [flags]

Commands:
  merge      Merge resource sets into an output folder (incremental with --blob)
  update     Apply explicit file change events to a previous merge
  inspect    List the winning resources stored in a merge snapshot
  watch      Merge, then keep the output up to date as sources change
  manifest   Generate an instrumentation test manifest
  mcp        Start the MCP server over stdio
  version    Show version information (-l for build details)
  help       Show this help message

Examples:
  resmerge merge --set main=src/main/res --set debug=src/debug/res -o build/res --blob build/merger
  resmerge update --config resmerge.yaml --events changes.yaml
  resmerge inspect --blob build/merger --type string
  resmerge watch --config resmerge.yaml

Run 'resmerge <command> --help' for more information on a command.
`
	_, _ = fmt.Fprint(os.Stderr, usage)
}
