package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kozaktomas/faceid/internal/face"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:           "identify <image>",
	Short:         "Find the closest enrolled face across all users",
	Args:          cobra.ExactArgs(1),
	RunE:          runIdentify,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().Float64("tolerance", 0, "Match tolerance (0 = configured default)")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	tolerance := mustGetFloat64(cmd, "tolerance")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.service.Identify(ctx, data, tolerance)
	if err != nil {
		return fmt.Errorf("identification failed: %w", err)
	}

	return reportMatch(result)
}

func reportMatch(result face.MatchResult) error {
	if result.Matched {
		fmt.Printf("MATCH user=%s record=%s distance=%.4f\n", result.OwnerID, result.RecordID, result.Distance)
		return nil
	}

	fmt.Printf("NO MATCH distance=%.4f\n", result.Distance)
	return errNoMatch
}
