package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mschirtzinger/spimrelay/internal/naming"
	"github.com/mschirtzinger/spimrelay/internal/ui"
)

var decodeCmd = &cobra.Command{
	Use:   "decode NAME...",
	Short: "Decode image plane filenames and print their canonical form",
	Long: `Decode one or more image plane filenames and print the parsed fields
together with the canonical name they map to.

Grammars:
  canonical  [<dataset>_]timelapseID-<id>_SPC-<n>_TP-<n>_ILL-<n>_CAM-<n>_CH-<n>_PL-<n>-outOf-<n>[_<info>].<ext>
  ingest     _channel<n>_position<n>_time<n>_view<n>_z<n>.<ext>
  auto       canonical first, then ingest

Examples:
  spimrelay decode _channel01_position0002_time0003_view0_z0004.tif
  spimrelay decode --stack --format yaml data/timelapseID-...tif`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		grammar, _ := cmd.Flags().GetString("grammar")
		stack, _ := cmd.Flags().GetBool("stack")
		format, _ := cmd.Flags().GetString("format")

		mode := naming.ModePlane
		if stack {
			mode = naming.ModeStack
		}
		return runDecode(cmd.OutOrStdout(), args, grammar, mode, format)
	},
}

func init() {
	decodeCmd.Flags().String("grammar", "auto", "filename grammar: auto, canonical, ingest")
	decodeCmd.Flags().Bool("stack", false, "print the whole-stack name instead of the plane name")
	decodeCmd.Flags().String("format", "text", "output format: text, json, yaml, toml")
	rootCmd.AddCommand(decodeCmd)
}

// decoded is one row of decode output.
type decoded struct {
	Input     string              `json:"input" yaml:"input" toml:"input"`
	Canonical string              `json:"canonical,omitempty" yaml:"canonical,omitempty" toml:"canonical,omitempty"`
	Error     string              `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
	Record    *naming.ImageRecord `json:"record,omitempty" yaml:"record,omitempty" toml:"record,omitempty"`
}

func decoderFor(grammar string) (func(filename, dir string) (naming.ImageRecord, error), error) {
	switch strings.ToLower(grammar) {
	case "auto", "":
		return naming.Decode, nil
	case "canonical":
		return naming.DecodeCanonical, nil
	case "ingest":
		return naming.DecodeIngest, nil
	default:
		return nil, fmt.Errorf("unknown grammar %q (want auto, canonical or ingest)", grammar)
	}
}

func runDecode(w io.Writer, names []string, grammar string, mode naming.Mode, format string) error {
	decode, err := decoderFor(grammar)
	if err != nil {
		return err
	}

	rows := make([]decoded, 0, len(names))
	failed := 0
	for _, arg := range names {
		dir, base := filepath.Split(arg)
		row := decoded{Input: arg}

		if dir != "" {
			dir = filepath.Clean(dir)
		}
		rec, err := decode(base, dir)
		if err != nil {
			row.Error = err.Error()
			failed++
		} else {
			row.Record = &rec
			row.Canonical = naming.Encode(rec, mode)
		}
		rows = append(rows, row)
	}

	if err := writeDecoded(w, rows, format); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d names could not be decoded", failed, len(names))
	}
	return nil
}

func writeDecoded(w io.Writer, rows []decoded, format string) error {
	switch strings.ToLower(format) {
	case "text", "":
		for _, row := range rows {
			if row.Record == nil {
				fmt.Fprintf(w, "%s %s\n    %s\n", ui.StatusIcon(false), row.Input, ui.RenderFail(row.Error))
				continue
			}
			r := row.Record
			fmt.Fprintf(w, "%s %s\n", ui.StatusIcon(true), row.Input)
			fmt.Fprintf(w, "    %s\n", ui.RenderAccent(row.Canonical))
			fmt.Fprintf(w, "    %s\n", ui.RenderMuted(fmt.Sprintf(
				"timelapse=%s specimen=%d time=%d illumination=%d camera=%d channel=%d plane=%d/%d ext=%s",
				r.TimelapseID, r.Specimen, r.TimePoint, r.Illumination, r.Camera, r.Channel, r.Plane, r.TotalNumPlanes, r.Extension)))
		}
		return nil

	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()

	case "toml":
		// TOML needs a table at the top level
		return toml.NewEncoder(w).Encode(struct {
			Names []decoded `toml:"name"`
		}{rows})

	default:
		return fmt.Errorf("unknown format %q (want text, json, yaml or toml)", format)
	}
}
