package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Classify one hand from landmark JSON",
		Long: `Read 21 hand landmarks as JSON from a file or stdin and print the finger
state and the symbol of every rule table.

The input is either a list of {"x","y","z"} points or an object with a
"points" list. --fingers skips landmarks and classifies a finger state.

Examples:
  mudra classify hand.json
  cat hand.json | mudra classify
  mudra classify --fingers 10000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fingers, _ := cmd.Flags().GetString("fingers")

			var fs gesture.FingerState
			if fingers != "" {
				var err error
				if fs, err = gesture.ParseFingerState(fingers); err != nil {
					return err
				}
			} else {
				in := cmd.InOrStdin()
				if len(args) == 1 {
					f, err := os.Open(args[0])
					if err != nil {
						return err
					}
					defer f.Close()
					in = f
				}
				hand, err := readHand(in)
				if err != nil {
					return err
				}
				fs = gesture.ExtractFingerState(&hand)
			}

			printClassification(cmd.OutOrStdout(), fs)
			return nil
		},
	}

	cmd.Flags().String("fingers", "", "finger state as five binary digits, thumb first")

	return cmd
}

type handFile struct {
	Points     []detector.Point3D `json:"points"`
	Handedness string             `json:"handedness"`
	Score      float64            `json:"score"`
}

// readHand decodes and validates one hand.
func readHand(r io.Reader) (detector.HandLandmarks, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return detector.HandLandmarks{}, err
	}

	var hf handFile
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &hf.Points)
	} else {
		err = json.Unmarshal(data, &hf)
	}
	if err != nil {
		return detector.HandLandmarks{}, fmt.Errorf("invalid landmark JSON: %w", err)
	}

	return detector.FromPoints(hf.Points, hf.Handedness, hf.Score)
}

func printClassification(out io.Writer, fs gesture.FingerState) {
	fmt.Fprintf(out, "fingers: %s\n", fs)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LANGUAGE\tMODE\tSYMBOL")
	for _, r := range gesture.ClassifyAll(fs) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Language, r.Mode, r.Symbol)
	}
	w.Flush()
}
