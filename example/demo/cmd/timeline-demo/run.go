package main

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/pubsubmanager"
)

const (
	flagFormat  = "format"
	flagSubject = "subject"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ping scenario and print its timeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString(flagFormat)
		subject, _ := cmd.Flags().GetString(flagSubject)

		if format != formatJSON && format != formatYAML {
			return fmt.Errorf("unsupported --%s %q, use %s or %s", flagFormat, format, formatJSON, formatYAML)
		}

		env, err := newScenarioEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer env.close()

		manager, err := pubsubmanager.NewManager(env.options...)
		if err != nil {
			return err
		}

		if err = runPingScenario(manager); err != nil {
			return err
		}

		entries := manager.GetHistory()
		if subject != "" {
			entries = manager.GetHistoryFor(subject)
		}

		return writeEntries(cmd.OutOrStdout(), format, entries)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP(flagFormat, "f", formatJSON, "output format: json or yaml")
	runCmd.Flags().StringP(flagSubject, "s", "", "print only the dedicated history of this publisher or subscriber")
}

func writeEntries(w io.Writer, format string, entries []timeline.Entry) error {
	dtos := timeline.ToDTOs(entries)

	if format == formatYAML {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(dtos); err != nil {
			return err
		}

		return encoder.Close()
	}

	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(dtos)
}
