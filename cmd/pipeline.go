package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/spigell/resume-matcher/internal/pipeline"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Print the stages a run goes through",
	Run: func(_ *cobra.Command, _ []string) {
		config, err := getConfig()
		if err != nil {
			log.Fatalf("getting a config: %v", err)
		}

		stages := pipeline.Default(pipelineConfig(config, "", nil))
		fmt.Println(pipeline.Flow(stages))
		for i, status := range pipeline.Describe(stages) {
			line := fmt.Sprintf("%d. %s", i+1, status.Name)
			if !status.Enabled {
				line += " (disabled"
				if status.Reason != "" {
					line += ": " + status.Reason
				}
				line += ")"
			}
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
}
