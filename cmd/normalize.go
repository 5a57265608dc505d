package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"itinera/itinerary"
	"itinera/logger"
	"itinera/services"
)

func newNormalizeCmd() *cobra.Command {
	var enrich, verbose bool
	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize an itinerary document or raw model output",
		Long: "Reads a JSON itinerary (or model output with a JSON object inside it) from\n" +
			"file or stdin and prints the normalized record. Exits non-zero when the\n" +
			"input is not an object.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := itinerary.Normalizer{}
			if verbose {
				logger.New(logger.Config{Service: "itinera", Level: "debug", Pretty: true, Output: cmd.ErrOrStderr()})
				n.Observer = func(e itinerary.DefaultingEvent) {
					log.Info().Str("field", e.Path).Str("reason", e.Reason).Msg("defaulted")
				}
			}

			in, closeIn, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeIn()

			it, err := readItinerary(in, n)
			if err != nil {
				return err
			}
			if enrich {
				itinerary.Enrich(it, services.NewMapLinks("", nil))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(it)
		},
	}
	cmd.Flags().BoolVar(&enrich, "enrich", false, "add map search links")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every defaulted field to stderr")
	return cmd
}

func newPDFCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "pdf <file>",
		Short: "Render an itinerary file as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeIn()

			it, err := readItinerary(in, itinerary.Normalizer{})
			if err != nil {
				return err
			}
			pdf, err := services.RenderItineraryPDF(it)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return errors.Wrap(err, "write pdf")
			}
			cmd.Printf("✅ Wrote %s (%d bytes)\n", output, len(pdf))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "itinerary.pdf", "output file")
	return cmd
}

// openInput reads args[0], or stdin when there is no argument or it is "-".
func openInput(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, errors.Wrap(err, "open input")
	}
	return f, func() { f.Close() }, nil
}

// readItinerary accepts a JSON document, or free text that is not JSON at
// all but has an object embedded in it.
func readItinerary(r io.Reader, n itinerary.Normalizer) (*itinerary.Itinerary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	if json.Valid(data) {
		return n.Normalize(data)
	}

	raw, err := services.ExtractJSON(string(data))
	if err != nil {
		return nil, errors.Wrap(err, "no itinerary object in input")
	}
	return n.Normalize(raw)
}
