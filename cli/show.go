package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"imagesearch/utils"
)

var showCmd = &cobra.Command{
	Use:   "show [image]",
	Short: "Print the fingerprint of an image",
	Long:  `Fingerprints an image without storing it and prints its average brightness and a histogram diagram per colour channel.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	fingerprinter, err := newFingerprinter()
	if err != nil {
		return err
	}

	fp, err := fingerprinter.FingerprintFile(args[0])
	if err != nil {
		return fmt.Errorf("fingerprint failed: %w", err)
	}

	diagram, err := utils.RenderDiagram(fp.Histograms)
	if err != nil {
		return err
	}

	cmd.Printf("Image: %s\n", fp.Filepath)
	cmd.Printf("Channels: %d\n", fp.ChannelCount())
	cmd.Printf("Average brightness: %.4f\n\n", fp.AverageBrightness)
	cmd.Print(diagram)
	return nil
}
