package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kozaktomas/faceid/internal/face"
	"github.com/spf13/cobra"
)

// errNoMatch signals a clean rejection. Returning it instead of calling
// os.Exit lets deferred cleanup (database pool, encoder client) run.
var errNoMatch = errors.New("no match")

var verifyCmd = &cobra.Command{
	Use:           "verify <user-id> <image>",
	Short:         "Verify a probe image against a user's enrolled faces",
	Args:          cobra.ExactArgs(2),
	RunE:          runVerify,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().Float64("tolerance", 0, "Match tolerance (0 = configured default)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	userID := args[0]
	tolerance := mustGetFloat64(cmd, "tolerance")

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	decision, err := a.service.Authenticate(ctx, userID, data, tolerance)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	return reportDecision(userID, decision)
}

func reportDecision(userID string, decision *face.Decision) error {
	if decision.Authenticated {
		fmt.Printf("MATCH user=%s record=%s distance=%.4f\n", userID, decision.RecordID, decision.Distance)
		return nil
	}

	fmt.Printf("NO MATCH user=%s distance=%.4f\n", userID, decision.Distance)
	return errNoMatch
}
