package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vstats-analysis/internal/service"
	"github.com/vstats-analysis/pkg/model"
	"github.com/vstats-analysis/pkg/writer"
)

var (
	dumpInput  string
	dumpFrame  int
	dumpType   int
	dumpOutput string
)

// dumpReport is the JSON shape of the dump command output.
type dumpReport struct {
	Frame  int                 `json:"frame"`
	TypeID int                 `json:"type_id"`
	Name   string              `json:"name"`
	Data   *model.FrameTypeData `json:"data"`
}

// dumpCmd decodes and prints the records of one (frame, type) pair.
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the decoded records of one frame and type as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := service.Open(cmd.Context(), dumpInput, sessionOptions())
		if err != nil {
			return err
		}
		defer sf.Close()

		if err := sf.WaitForIndex(cmd.Context()); err != nil {
			return err
		}

		data, err := sf.LoadFrameType(cmd.Context(), dumpFrame, dumpType)
		if err != nil {
			return err
		}

		report := dumpReport{
			Frame:  dumpFrame,
			TypeID: dumpType,
			Data:   data,
		}
		if desc := sf.Registry().GetType(dumpType); desc != nil {
			report.Name = desc.Name
		}

		w := writer.NewPrettyJSONWriter[dumpReport]()
		if dumpOutput != "" {
			return w.WriteToFile(report, dumpOutput)
		}
		return w.Write(report, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVarP(&dumpInput, "input", "i", "", "Path to statistics file (required)")
	dumpCmd.Flags().IntVar(&dumpFrame, "frame", 0, "Frame (POC) to dump")
	dumpCmd.Flags().IntVar(&dumpType, "type", 0, "Statistics type ID to dump")
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "Write JSON to file instead of stdout (.gz compresses)")
	dumpCmd.MarkFlagRequired("input")
	dumpCmd.MarkFlagRequired("type")
}
