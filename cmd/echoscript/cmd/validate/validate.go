package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"echoscript/cmd/echoscript/cmd/common"
	"echoscript/internal/app/converter"
	"echoscript/internal/app/credential"
)

// Cmd represents the validate command
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Check configuration and the API key against the inference service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, apiKey, cleanup, err := common.SetupWithKey(cmd.Context(), converter.ProgressConfig{})
		if err != nil {
			return err
		}
		defer cleanup()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config    ok (store=%s, audio=%s, chunk=%ds)\n",
			a.Config.Storage.Driver, a.Config.Storage.AudioBackend, a.Config.Pipeline.ChunkSeconds)
		fmt.Fprintf(out, "namespace %s\n", credential.Namespace(apiKey))

		if !a.Client.ValidateCredential(cmd.Context(), apiKey) {
			return fmt.Errorf("API key was rejected by %s", a.Client.Model())
		}
		fmt.Fprintf(out, "api key   ok (%s)\n", a.Client.Model())
		return nil
	},
}
