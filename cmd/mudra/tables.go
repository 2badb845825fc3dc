package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/gesture"
)

func tablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the sign rule tables",
		Long: `Print the ordered rule tables. Rules that repeat an earlier pattern can never
match and are marked as shadowed.

Examples:
  mudra tables                      # All four tables
  mudra tables --lang AR --mode WORDS`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lang, _ := cmd.Flags().GetString("lang")
			mode, _ := cmd.Flags().GetString("mode")

			langs, err := languageFlag(lang)
			if err != nil {
				return err
			}
			modes, err := modeFlag(mode)
			if err != nil {
				return err
			}

			for _, l := range langs {
				for _, m := range modes {
					printTable(cmd.OutOrStdout(), l, m)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("lang", "", "language (EN, AR)")
	cmd.Flags().String("mode", "", "mode (LETTERS, WORDS)")

	return cmd
}

func printTable(out io.Writer, lang gesture.Language, mode gesture.Mode) {
	table := gesture.Table(lang, mode)
	dead := make(map[int]bool)
	for _, i := range table.Shadowed() {
		dead[i] = true
	}

	fmt.Fprintf(out, "%s %s (%d rules)\n", lang, mode, len(table))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPATTERN\tSYMBOL\t")
	for i, r := range table {
		note := ""
		if dead[i] {
			note = "shadowed"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, r.Pattern, r.Symbol, note)
	}
	w.Flush()
	fmt.Fprintln(out, strings.Repeat("-", 32))
}

// languageFlag parses a --lang value, allowing an empty value.
func languageFlag(s string) ([]gesture.Language, error) {
	if strings.TrimSpace(s) == "" {
		return gesture.Languages, nil
	}
	l, err := gesture.ParseLanguage(s)
	if err != nil {
		return nil, err
	}
	return []gesture.Language{l}, nil
}

// modeFlag parses a --mode value, allowing an empty value.
func modeFlag(s string) ([]gesture.Mode, error) {
	if strings.TrimSpace(s) == "" {
		return gesture.Modes, nil
	}
	m, err := gesture.ParseMode(s)
	if err != nil {
		return nil, err
	}
	return []gesture.Mode{m}, nil
}
