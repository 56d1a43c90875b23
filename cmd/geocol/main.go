package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visionlake/geocol/pkg/dataset"
	"github.com/visionlake/geocol/pkg/logger"
	"github.com/visionlake/geocol/pkg/udt"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "geocol",
		Short: "Geocol - geometric column codecs for Arrow datasets",
		Long: `Geocol stores geometric values (points, 2D/3D boxes, segmentation masks)
as typed columns in Arrow IPC datasets. This tool inspects the registered
column layouts and the contents of dataset files.`,
	}

	var logLevel string
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return logger.Init(logger.Config{Level: logLevel, Encoding: "console", Development: true})
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("geocol v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "schemas",
		Short: "List registered geometry column layouts",
		Run: func(cmd *cobra.Command, args []string) {
			for _, codec := range udt.Codecs() {
				fmt.Printf("%s\n", codec.Name())
				fmt.Printf("  bridge key: %s\n", codec.BridgeKey())
				fmt.Printf("  layout:     %s\n", codec.Schema())
			}
		},
	})

	describeCmd := &cobra.Command{
		Use:   "describe <file>",
		Short: "Describe a dataset file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return describe(args[0])
		},
	}
	root.AddCommand(describeCmd)

	if err := root.Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

// describe prints the schema and row count of a dataset file, marking
// geometry columns with their codec name.
func describe(path string) error {
	r, err := dataset.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	schema := r.Schema()
	fmt.Printf("%s\n", path)
	fmt.Printf("columns: %d\n", schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		field := schema.Field(i)
		kind := field.Type.String()
		if idx := field.Metadata.FindKey(dataset.MetaKeyUDT); idx >= 0 {
			kind = field.Metadata.Values()[idx] + " (" + kind + ")"
		}
		nullable := ""
		if field.Nullable {
			nullable = " nullable"
		}
		fmt.Printf("  %s: %s%s\n", field.Name, kind, nullable)
	}
	fmt.Printf("rows: %d\n", r.NumRows())
	return nil
}
