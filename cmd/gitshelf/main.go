// cmd/gitshelf/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gitshelf/internal/repo"
	"gitshelf/internal/vcserr"
	"gitshelf/internal/workspace"
)

var rootCmd = &cobra.Command{
	Use:                "gitshelf",
	Short:              "gitshelf is a local, content-addressed version control system",
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dispatch(args)
		return nil
	},
}

func main() {
	rootCmd.SetArgs(os.Args[1:])
	// Errors never escape dispatch; rootCmd.Execute only fails on cobra's own
	// internal plumbing, which DisableFlagParsing keeps out of the way here.
	_ = rootCmd.Execute()
}

// dispatch mirrors the source VCS's driver: every failure prints a single
// line to stdout and the process exits 0. No error is ever written to
// stderr and no command exits non-zero.
func dispatch(args []string) {
	if len(args) == 0 {
		fmt.Println(vcserr.ErrPleaseEnterCommand.Error())
		return
	}

	command := args[0]
	rest := args[1:]

	if command != "init" {
		if _, err := workspace.FindRoot(".", ".store"); err != nil {
			fmt.Println(vcserr.ErrNotInitialized.Error())
			return
		}
	}

	if err := run(command, rest); err != nil {
		fmt.Println(err.Error())
	}
}

func run(command string, args []string) error {
	switch command {
	case "init":
		return withArity(args, 0, func() error {
			r, err := repo.Init(".")
			if err != nil {
				return err
			}
			return r.Close()
		})

	case "add":
		return withArity(args, 1, withRepo(func(r *repo.Repository) error {
			return r.Add(args[0])
		}))

	case "commit":
		return withArity(args, 1, withRepo(func(r *repo.Repository) error {
			return r.Commit(args[0])
		}))

	case "rm":
		return withArity(args, 1, withRepo(func(r *repo.Repository) error {
			return r.Rm(args[0])
		}))

	case "log":
		return withArity(args, 0, withRepo(func(r *repo.Repository) error {
			out, err := r.Log()
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}))

	case "global-log":
		return withArity(args, 0, withRepo(func(r *repo.Repository) error {
			out, err := r.GlobalLog()
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}))

	case "find":
		return withArity(args, 1, withRepo(func(r *repo.Repository) error {
			out, err := r.Find(args[0])
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}))

	case "status":
		return withArity(args, 0, withRepo(func(r *repo.Repository) error {
			out, err := r.Status()
			if err != nil {
				return err
			}
			printStatus(out)
			return nil
		}))

	case "restore":
		return runRestore(args)

	case "branch":
		return withArity(args, 1, withRepo(func(r *repo.Repository) error {
			return r.Branch(args[0])
		}))

	case "switch":
		return withArity(args, 1, withRepo(func(r *repo.Repository) error {
			return r.Switch(args[0])
		}))

	case "rm-branch":
		return withArity(args, 1, withRepo(func(r *repo.Repository) error {
			return r.RmBranch(args[0])
		}))

	case "reset":
		return withArity(args, 1, withRepo(func(r *repo.Repository) error {
			return r.Reset(args[0])
		}))

	case "merge":
		return withArity(args, 1, withRepo(func(r *repo.Repository) error {
			return r.Merge(args[0])
		}))

	case "diff":
		return withRepo(func(r *repo.Repository) error {
			out, err := r.Diff(args)
			if err != nil {
				return err
			}
			printDiff(out)
			return nil
		})()

	default:
		return vcserr.ErrNoSuchCommand
	}
}

// runRestore implements the two restore shapes: `restore -- f` (2 operands)
// and `restore <id> -- f` (3 operands), with the literal `--` positional
// marker checked exactly as the source VCS checks it.
func runRestore(args []string) error {
	switch len(args) {
	case 2:
		if args[0] != "--" {
			return vcserr.ErrIncorrectOperands
		}
		return withRepo(func(r *repo.Repository) error {
			return r.Restore(args[1])
		})()
	case 3:
		if args[1] != "--" {
			return vcserr.ErrIncorrectOperands
		}
		return withRepo(func(r *repo.Repository) error {
			return r.RestoreFromID(args[0], args[2])
		})()
	default:
		return vcserr.ErrIncorrectOperands
	}
}

func withArity(args []string, expected int, fn func() error) error {
	if len(args) != expected {
		return vcserr.ErrIncorrectOperands
	}
	return fn()
}

// withRepo opens the repository rooted at the current directory, runs fn,
// and closes it regardless of outcome.
func withRepo(fn func(r *repo.Repository) error) func() error {
	return func() error {
		r, err := repo.Open(".")
		if err != nil {
			return err
		}
		defer r.Close()
		return fn(r)
	}
}

// printStatus recolors status's four sections (green for staged, red for
// removed, yellow for modified, blue for untracked) without altering a
// single byte of the underlying text: fatih/color auto-disables ANSI codes
// on a non-tty, so piped/captured output stays exactly what spec'd.
func printStatus(status string) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	blue := color.New(color.FgBlue)

	section := ""
	lines := strings.Split(strings.TrimSuffix(status, "\n"), "\n")
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "=== Staged Files"):
			section = "staged"
		case strings.HasPrefix(line, "=== Removed Files"):
			section = "removed"
		case strings.HasPrefix(line, "=== Modifications"):
			section = "modified"
		case strings.HasPrefix(line, "=== Untracked Files"):
			section = "untracked"
		case strings.HasPrefix(line, "==="):
			section = ""
		}

		switch {
		case line == "" || strings.HasPrefix(line, "==="):
			fmt.Println(line)
		case section == "staged":
			green.Println(line)
		case section == "removed":
			red.Println(line)
		case section == "modified":
			yellow.Println(line)
		case section == "untracked":
			blue.Println(line)
		default:
			fmt.Println(line)
		}
	}
}

// printDiff colors a unified diff's added/removed/hunk-header lines.
func printDiff(out string) {
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	header := color.New(color.FgCyan)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	for _, line := range lines {
		switch {
		case line == "":
			fmt.Println()
		case strings.HasPrefix(line, "@@"):
			header.Println(line)
		case strings.HasPrefix(line, "+"):
			added.Println(line)
		case strings.HasPrefix(line, "-"):
			removed.Println(line)
		default:
			fmt.Println(line)
		}
	}
}
