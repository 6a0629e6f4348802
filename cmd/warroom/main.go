package main

import (
	"os"
	"strings"

	"warroom-cli/internal/cli"
)

func isCauseID(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "cause-") {
		return false
	}
	// Keep it permissive; ids are generated but users may paste prefixes.
	return len(s) > len("cause-")
}

func rewriteDirectCauseLookupArgs(argv []string) []string {
	// Convenience: `warroom <cause-id>` works like `warroom causes show <cause-id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	//
	// Users often pass persistent flags first (e.g. `warroom --dir ... <cause-id>`),
	// so we must find the first positional token, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	// Minimal persistent-flag awareness. Unknown flags are skipped without
	// consuming a value so the cause id is never swallowed by mistake.
	valueFlags := map[string]bool{
		"--dir":       true,
		"--worksheet": true,
		"--format":    true,
	}
	boolFlags := map[string]bool{
		"--pretty":  true,
		"--verbose": true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Stop flag parsing; next token (if any) is the first positional.
			if i+1 < len(argv) && isCauseID(argv[i+1]) {
				out := make([]string, 0, len(argv)+2)
				out = append(out, argv[:i+1]...)
				out = append(out, "causes", "show")
				out = append(out, argv[i+1:]...)
				return out
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			// --flag=value form
			if strings.Contains(a, "=") {
				continue
			}
			if boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++ // skip value if present
				continue
			}
			continue
		}

		// First positional token.
		if isCauseID(a) {
			out := make([]string, 0, len(argv)+2)
			out = append(out, argv[:i]...)
			out = append(out, "causes", "show")
			out = append(out, argv[i:]...)
			return out
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectCauseLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
