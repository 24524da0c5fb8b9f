package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Rorical/RoriAtlas/internal/app"
	"github.com/Rorical/RoriAtlas/internal/core"
	"github.com/Rorical/RoriAtlas/internal/eventbus"
	"github.com/Rorical/RoriAtlas/internal/schema"
	"github.com/Rorical/RoriAtlas/ui/components"
)

const defaultPrompt = "Tell me about the city details for gwalior?"

var (
	formatFlag       string
	maxToolCallsFlag int
	tuiFlag          bool
	showConvFlag     bool
)

var runCmd = &cobra.Command{
	Use:   "run [prompt]",
	Short: "Ask about a city and print its state, country and capitals",
	Long: `Run sends the prompt to the model, lets it call the web search tool when it
needs more facts, and prints the structured record it settles on.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := defaultPrompt
		if len(args) > 0 {
			prompt = args[0]
		}
		if err := checkFormat(formatFlag); err != nil {
			return err
		}

		cfg, err := loadProfile()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(verboseFlag)
		var bus *eventbus.EventBus
		if tuiFlag {
			bus = newEventBus(logger.WithName("events"))
		}

		loop, err := buildLoop(cfg, logger, bus, maxToolCallsFlag)
		if err != nil {
			return err
		}

		var (
			record *schema.CityDetails
			run    *core.Run
		)
		if tuiFlag {
			application := app.NewApplication(loop, bus, prompt)
			defer application.Stop()
			run = application.Run()
			record, err = application.Start(cmd.Context())
			if err == nil && formatFlag == "table" {
				// The UI already showed the table
				return nil
			}
		} else {
			run = loop.NewRun(prompt)
			record, err = run.Execute(cmd.Context())
		}

		if showConvFlag {
			fmt.Fprint(os.Stderr, components.RenderConversation(run.Conversation()))
		}
		if err != nil {
			return err
		}
		return writeRecord(cmd.OutOrStdout(), record, formatFlag)
	},
}

func checkFormat(format string) error {
	switch format {
	case "table", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
}

func writeRecord(w io.Writer, record *schema.CityDetails, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(record)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		_, err := fmt.Fprintln(w, components.RenderRecord(record))
		return err
	}
}

func init() {
	runCmd.Flags().StringVarP(&formatFlag, "format", "f", "table", "Output format: table, json or yaml")
	runCmd.Flags().IntVar(&maxToolCallsFlag, "max-tool-calls", 0, "Maximum searches per run (default from profile)")
	runCmd.Flags().BoolVar(&tuiFlag, "tui", false, "Show the run's progress in an interactive view")
	runCmd.Flags().BoolVar(&showConvFlag, "show-conversation", false, "Print the conversation to stderr when the run ends")
}
