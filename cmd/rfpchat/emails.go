package main

import (
	"github.com/spf13/cobra"

	"rfp-assistant/internal/format"
)

func newEmailsCmd(a *app) *cobra.Command {
	var rfpID string
	unprocessed := &cobra.Command{
		Use:   "unprocessed",
		Short: "List inbound vendor emails that did not become proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			emails, err := unwrap(a.client.UnprocessedEmails(cmd.Context(), rfpID))
			if err != nil {
				return err
			}
			if len(emails) == 0 {
				a.printf("No unprocessed emails\n")
				return nil
			}
			t := newTable("ID", "FROM", "SUBJECT", "RFP", "ERROR", "RECEIVED")
			for _, e := range emails {
				rfp := ""
				if e.RFP != nil {
					rfp = e.RFP.Title
				} else if e.RFPID != nil {
					rfp = *e.RFPID
				}
				reason := ""
				if e.ProcessingError != nil {
					reason = format.AIError(*e.ProcessingError)
				}
				t.Row(e.ID, e.From, e.Subject, rfp, reason, format.Date(e.CreatedAt, ""))
			}
			a.printf("%s\n", t.Render())
			return nil
		},
	}
	unprocessed.Flags().StringVar(&rfpID, "rfp", "", "only emails matched to this RFP")

	cmd := &cobra.Command{
		Use:               "emails",
		Aliases:           []string{"email"},
		Short:             "Review inbound vendor emails",
		PersistentPreRunE: a.setupSignedIn,
	}
	cmd.AddCommand(
		unprocessed,
		&cobra.Command{
			Use:   "reparse <id>",
			Short: "Retry turning an inbound email into a proposal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := unwrapAI(a.client.ReparseEmail(cmd.Context(), args[0]))
				if err != nil {
					return err
				}
				if res.ProposalID != "" {
					a.printf("Created proposal %s\n", res.ProposalID)
					return nil
				}
				a.printf("Email reparsed\n")
				return nil
			},
		},
	)
	return cmd
}
