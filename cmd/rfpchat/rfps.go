package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"rfp-assistant/internal/domain"
	"rfp-assistant/internal/format"
)

func newRFPsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rfps",
		Aliases: []string{"rfp"},
		Short:   "Create, dispatch and compare RFPs",
		PersistentPreRunE: a.setupSignedIn,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List RFPs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rfps, err := unwrap(a.client.ListRFPs(cmd.Context()))
				if err != nil {
					return err
				}
				if len(rfps) == 0 {
					a.printf("No RFPs yet\n")
					return nil
				}
				t := newTable("ID", "TITLE", "BUDGET", "DELIVERY", "CREATED")
				for _, r := range rfps {
					t.Row(r.ID, r.Title, money(r.Budget), days(r.DeliveryDays), format.Date(r.CreatedAt, ""))
				}
				a.printf("%s\n", t.Render())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show an RFP and its vendors",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rfp, err := unwrap(a.client.GetRFPWithVendors(cmd.Context(), args[0]))
				if err != nil {
					return err
				}
				printRFP(a, rfp.RFP)
				if len(rfp.Vendors) == 0 {
					a.printf("\nNo vendors yet\n")
					return nil
				}
				t := newTable("VENDOR", "EMAIL", "STATUS", "SENT")
				for _, v := range rfp.Vendors {
					t.Row(v.Name, v.Email, v.Status, format.Date(v.SentAt, ""))
				}
				a.printf("\n%s\n", t.Render())
				return nil
			},
		},
		&cobra.Command{
			Use:   "preview <description>",
			Short: "Extract a structured RFP from a description without saving it",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				prompt, err := rfpPrompt(args)
				if err != nil {
					return err
				}
				s, err := unwrapAI(a.client.PreviewRFP(cmd.Context(), prompt))
				if err != nil {
					return err
				}
				printStructured(a, s)
				return nil
			},
		},
		&cobra.Command{
			Use:   "create <description>",
			Short: "Create an RFP from a description",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				prompt, err := rfpPrompt(args)
				if err != nil {
					return err
				}
				rfp, err := unwrapAI(a.client.CreateRFP(cmd.Context(), prompt))
				if err != nil {
					return err
				}
				a.logger.Info("rfp created", "rfp_id", rfp.ID)
				a.printf("Created RFP %s\n\n", rfp.ID)
				printRFP(a, rfp)
				return nil
			},
		},
		newRFPSendCmd(a),
		&cobra.Command{
			Use:   "compare <id>",
			Short: "Compare the proposals received for an RFP",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := unwrapAI(a.client.CompareProposals(cmd.Context(), args[0]))
				if err != nil {
					return err
				}
				printComparison(a, c)
				return nil
			},
		},
		&cobra.Command{
			Use:   "check <id>",
			Short: "Poll the inbox for new vendor proposals",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := unwrapAI(a.client.CheckForProposals(cmd.Context(), args[0]))
				if err != nil {
					return err
				}
				a.printf("Processed %d new proposal(s)\n", res.ProcessedCount)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete an RFP",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := unwrap(a.client.DeleteRFP(cmd.Context(), args[0])); err != nil {
					return err
				}
				a.printf("Deleted RFP %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newRFPSendCmd(a *app) *cobra.Command {
	var vendorIDs []string
	cmd := &cobra.Command{
		Use:   "send <id>",
		Short: "Email an RFP to vendors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(vendorIDs) == 0 {
				return errors.New("select at least one vendor with --vendor")
			}
			res, err := unwrap(a.client.SendRFP(cmd.Context(), args[0], vendorIDs))
			if err != nil {
				return err
			}
			a.printf("Sent to %d vendor(s)\n", res.SentCount)
			if len(res.FailedVendors) > 0 {
				a.printf("Failed: %s\n", strings.Join(res.FailedVendors, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&vendorIDs, "vendor", nil, "vendor id (repeatable)")
	return cmd
}

func rfpPrompt(args []string) (string, error) {
	prompt := joinArgs(args)
	if errs := format.ValidateRFP(prompt); len(errs) > 0 {
		return "", errors.New(strings.Join(errs, "; "))
	}
	return prompt, nil
}

func printRFP(a *app, r domain.RFP) {
	a.printf("%s\n", r.Title)
	if r.StructuredData.Description != "" {
		a.printf("%s\n", r.StructuredData.Description)
	}
	a.printf("\nBudget:   %s\n", money(r.Budget))
	a.printf("Delivery: %s\n", days(r.DeliveryDays))
	if r.PaymentTerms != "" {
		a.printf("Payment:  %s\n", r.PaymentTerms)
	}
	if r.WarrantyYears != nil {
		a.printf("Warranty: %d year(s)\n", *r.WarrantyYears)
	}
	if r.CreatedAt != "" {
		a.printf("Created:  %s\n", format.Date(r.CreatedAt, ""))
	}
	printItems(a, r.StructuredData.Items)
}

func printStructured(a *app, s domain.StructuredRFP) {
	a.printf("%s\n", s.Title)
	if s.Description != "" {
		a.printf("%s\n", s.Description)
	}
	a.printf("\nBudget:   %s\n", money(s.Budget))
	a.printf("Delivery: %s\n", days(s.DeliveryDays))
	if s.PaymentTerms != "" {
		a.printf("Payment:  %s\n", s.PaymentTerms)
	}
	printItems(a, s.Items)
	for _, req := range s.AdditionalRequirements {
		a.printf("- %s\n", req)
	}
}

func printItems(a *app, items []domain.RFPItem) {
	if len(items) == 0 {
		return
	}
	t := newTable("ITEM", "QTY", "SPECIFICATIONS")
	for _, it := range items {
		t.Row(it.Name, format.Number(float64(it.Quantity)), specs(it.Specifications))
	}
	a.printf("\n%s\n", t.Render())
}

func printComparison(a *app, c domain.ProposalComparison) {
	a.printf("%s\n", c.RFPTitle)
	if len(c.Proposals) == 0 {
		a.printf("\nNo proposals received yet\n")
		return
	}
	rec, hasRec := c.Recommended()
	t := newTable("", "VENDOR", "TOTAL", "DELIVERY", "PAYMENT", "SCORE")
	for _, p := range c.Proposals {
		mark := ""
		if hasRec && p.ID == rec.ID {
			mark = "★"
		}
		t.Row(mark, p.VendorName, format.Currency(p.ExtractedData.TotalPrice, "USD"),
			fmt.Sprintf("%d days", p.ExtractedData.DeliveryDays), p.ExtractedData.PaymentTerms, score(p.AIScore))
	}
	a.printf("\n%s\n", t.Render())

	if c.AIRecommendation == nil {
		return
	}
	if hasRec {
		a.printf("\nRecommended: %s\n", rec.VendorName)
	}
	if c.AIRecommendation.Reasoning != "" {
		a.printf("\n%s\n", c.AIRecommendation.Reasoning)
	}
	if c.AIRecommendation.ComparisonSummary != "" {
		a.printf("\n%s\n", c.AIRecommendation.ComparisonSummary)
	}
}

func money(v *float64) string {
	if v == nil {
		return "-"
	}
	return format.Currency(*v, "USD")
}

func days(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d days", *v)
}

func score(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", format.Score(*v), format.ScoreBand(*v))
}

func specs(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, m[k]))
	}
	return strings.Join(parts, ", ")
}
