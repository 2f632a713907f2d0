package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rfp-assistant/internal/domain"
	"rfp-assistant/internal/format"
)

func newProposalsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "proposals",
		Aliases:           []string{"proposal"},
		Short:             "Inspect and process vendor proposals",
		PersistentPreRunE: a.setupSignedIn,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <rfp-id>",
			Short: "List the proposals for an RFP",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				proposals, err := unwrap(a.client.ListProposalsByRFP(cmd.Context(), args[0]))
				if err != nil {
					return err
				}
				if len(proposals) == 0 {
					a.printf("No proposals yet\n")
					return nil
				}
				t := newTable("ID", "VENDOR", "TOTAL", "DELIVERY", "SCORE", "RECEIVED")
				for _, p := range proposals {
					t.Row(p.ID, p.VendorName, format.Currency(p.ExtractedData.TotalPrice, "USD"),
						fmt.Sprintf("%d days", p.ExtractedData.DeliveryDays), score(p.AIScore), format.Date(p.CreatedAt, ""))
				}
				a.printf("%s\n", t.Render())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show a proposal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := unwrap(a.client.GetProposal(cmd.Context(), args[0]))
				if err != nil {
					return err
				}
				printProposal(a, p)
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats <rfp-id>",
			Short: "Score statistics for an RFP's proposals",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := unwrap(a.client.ProposalStats(cmd.Context(), args[0]))
				if err != nil {
					return err
				}
				a.printf("Proposals: %d\n", s.TotalProposals)
				if s.TotalProposals == 0 {
					return nil
				}
				a.printf("Average:   %s\n", format.Score(s.AverageScore))
				a.printf("Highest:   %s\n", format.Score(s.HighestScore))
				a.printf("Lowest:    %s\n", format.Score(s.LowestScore))
				if s.TopVendor != nil {
					a.printf("Top:       %s (%s)\n", s.TopVendor.Name, format.Score(s.TopVendor.Score))
				}
				return nil
			},
		},
		newProposalProcessCmd(a),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a proposal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := unwrap(a.client.DeleteProposal(cmd.Context(), args[0])); err != nil {
					return err
				}
				a.printf("Deleted proposal %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

// newProposalProcessCmd submits a vendor email by hand, for replies that
// never reached the inbound webhook.
func newProposalProcessCmd(a *app) *cobra.Command {
	var from, bodyFile string
	cmd := &cobra.Command{
		Use:   "process <rfp-id>",
		Short: "Parse a vendor email into a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !format.IsValidEmail(from) {
				return errors.New("please provide a valid email address")
			}
			body, err := a.readBody(bodyFile)
			if err != nil {
				return err
			}
			if strings.TrimSpace(body) == "" {
				return errors.New("email body must not be empty")
			}
			res, err := unwrapAI(a.client.ProcessProposal(cmd.Context(), args[0], domain.ProcessProposalRequest{
				VendorEmail: from,
				EmailBody:   body,
			}))
			if err != nil {
				return err
			}
			a.printf("Created proposal %s\n", res.ProposalID)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "vendor email address")
	cmd.Flags().StringVar(&bodyFile, "body-file", "-", "file holding the email body, - for stdin")
	return cmd
}

func (a *app) readBody(path string) (string, error) {
	var r io.Reader = a.in
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open body file: %w", err)
		}
		defer f.Close()
		r = f
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(raw), nil
}

func printProposal(a *app, p domain.Proposal) {
	a.printf("%s <%s>\n", p.VendorName, p.VendorEmail)
	a.printf("Received: %s\n", format.Date(p.CreatedAt, ""))
	a.printf("Total:    %s\n", format.Currency(p.ExtractedData.TotalPrice, "USD"))
	a.printf("Delivery: %d days\n", p.ExtractedData.DeliveryDays)
	if p.ExtractedData.PaymentTerms != "" {
		a.printf("Payment:  %s\n", p.ExtractedData.PaymentTerms)
	}
	if p.ExtractedData.Warranty != "" {
		a.printf("Warranty: %s\n", p.ExtractedData.Warranty)
	}
	a.printf("Score:    %s\n", score(p.AIScore))
	if p.UsedFallbackParsing {
		a.printf("Note:     parsed without AI; figures may be incomplete\n")
	}

	if len(p.ExtractedData.Items) > 0 {
		t := newTable("ITEM", "QTY", "PRICE")
		for _, it := range p.ExtractedData.Items {
			t.Row(it.Name, format.Number(float64(it.Quantity)), format.Currency(it.Price, "USD"))
		}
		a.printf("\n%s\n", t.Render())
	}
	if p.AIEvaluation != nil && *p.AIEvaluation != "" {
		a.printf("\n%s\n", *p.AIEvaluation)
	}
}
