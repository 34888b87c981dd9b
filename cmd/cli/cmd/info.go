package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vstats-analysis/internal/service"
	"github.com/vstats-analysis/pkg/model"
	"github.com/vstats-analysis/pkg/writer"
)

var (
	infoInput string
	infoJSON  bool
)

// infoReport is the JSON shape of the info command output.
type infoReport struct {
	Path         string       `json:"path"`
	SequenceName string       `json:"sequence_name,omitempty"`
	LayerID      string       `json:"layer_id,omitempty"`
	FrameWidth   int          `json:"frame_width,omitempty"`
	FrameHeight  int          `json:"frame_height,omitempty"`
	FrameRate    float64      `json:"frame_rate,omitempty"`
	FileSize     int64        `json:"file_size"`
	Compression  string       `json:"compression"`
	Layout       string       `json:"layout"`
	MaxPOC       int          `json:"max_poc"`
	IndexedPairs int          `json:"indexed_pairs"`
	Types        []typeReport `json:"types"`
}

type typeReport struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Scalar  bool   `json:"scalar"`
	Vector  bool   `json:"vector"`
	Mapping string `json:"mapping,omitempty"`
}

// infoCmd prints sequence metadata and the declared statistics types.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show file metadata and declared statistics types",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := service.Open(cmd.Context(), infoInput, sessionOptions())
		if err != nil {
			return err
		}
		defer sf.Close()

		if err := sf.WaitForIndex(cmd.Context()); err != nil {
			return err
		}

		info := sf.Info()
		report := infoReport{
			Path:         info.Path,
			SequenceName: info.SequenceName,
			LayerID:      info.LayerID,
			FrameWidth:   info.FrameWidth,
			FrameHeight:  info.FrameHeight,
			FrameRate:    info.FrameRate,
			FileSize:     info.FileSize,
			Compression:  info.Compression,
			Layout:       info.Layout.String(),
			MaxPOC:       info.MaxPOC,
			IndexedPairs: info.IndexedPairs,
		}
		for _, desc := range sf.Registry().Types() {
			report.Types = append(report.Types, typeReport{
				ID:      desc.TypeID,
				Name:    desc.Name,
				Scalar:  desc.HasValueData,
				Vector:  desc.HasVectorData,
				Mapping: mappingName(desc.ColorMapper.Kind),
			})
		}

		if infoJSON {
			return writer.NewPrettyJSONWriter[infoReport]().Write(report, os.Stdout)
		}

		fmt.Printf("File:        %s (%d bytes, %s)\n", report.Path, report.FileSize, report.Compression)
		if report.SequenceName != "" {
			fmt.Printf("Sequence:    %s (layer %s)\n", report.SequenceName, report.LayerID)
		}
		if report.FrameWidth > 0 {
			fmt.Printf("Frame size:  %dx%d\n", report.FrameWidth, report.FrameHeight)
		}
		if report.FrameRate > 0 {
			fmt.Printf("Frame rate:  %g\n", report.FrameRate)
		}
		fmt.Printf("Layout:      %s\n", report.Layout)
		fmt.Printf("Max POC:     %d (%d indexed pairs)\n", report.MaxPOC, report.IndexedPairs)
		fmt.Printf("Types:       %d\n", len(report.Types))
		for _, tr := range report.Types {
			kind := "value"
			if tr.Vector {
				kind = "vector"
			}
			fmt.Printf("  %3d  %-24s %s", tr.ID, tr.Name, kind)
			if tr.Mapping != "" {
				fmt.Printf(" (%s)", tr.Mapping)
			}
			fmt.Println()
		}
		return nil
	},
}

func mappingName(kind model.ColorMappingKind) string {
	switch kind {
	case model.MappingMap:
		return "map"
	case model.MappingRange:
		return "range"
	case model.MappingGradient:
		return "gradient"
	default:
		return ""
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVarP(&infoInput, "input", "i", "", "Path to statistics file (required)")
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Emit JSON instead of text")
	infoCmd.MarkFlagRequired("input")
}
