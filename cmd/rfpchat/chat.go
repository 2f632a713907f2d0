package main

import (
	"errors"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"rfp-assistant/internal/chat"
	"rfp-assistant/internal/tui"
)

func newChatCmd(a *app) *cobra.Command {
	var expert, style string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive expert chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			bridge := tui.NewBridge()
			ctrl, err := chat.NewController(a.client, a.session,
				chat.WithTypingDelay(a.cfg.TypingDelay),
				chat.WithLogger(a.logger),
				chat.WithObserver(bridge.Observe),
			)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), ctrl,
				tui.WithBridge(bridge),
				tui.WithExpert(expert),
				tui.WithMarkdownStyle(style),
			)
		},
	}
	cmd.Flags().StringVar(&expert, "expert", "", "expert type to open directly")
	cmd.Flags().StringVar(&style, "style", "auto", "markdown style (auto, dark, light, notty)")
	return cmd
}

// ask sends one message through the same chat flow as the TUI and prints
// the reply.
func newAskCmd(a *app) *cobra.Command {
	var expert string
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send a single message to an expert",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if expert == "" {
				return errors.New("--expert is required")
			}
			ctrl, err := chat.NewController(a.client, a.session,
				chat.WithTypingDelay(a.cfg.TypingDelay),
				chat.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}

			ctrl.SelectExpert(cmd.Context(), expert)
			if st := ctrl.State(); st.Error != "" {
				if st.AuthRequired {
					return errNotSignedIn
				}
				return errors.New(st.Error)
			}

			switch ctrl.Send(cmd.Context(), joinArgs(args)) {
			case chat.SendIgnored:
				return errors.New("message must not be empty")
			case chat.SendFailed:
				st := ctrl.State()
				if st.AuthRequired {
					return errNotSignedIn
				}
				return errors.New(st.Error)
			}

			st := ctrl.State()
			if len(st.Messages) > 0 {
				a.printf("%s\n", st.Messages[len(st.Messages)-1].Content)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&expert, "expert", "", "expert type")
	return cmd
}

func newExpertsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "experts",
		Short: "List the available chat experts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			experts, err := unwrap(a.client.Experts(cmd.Context()))
			if err != nil {
				return err
			}
			if len(experts) == 0 {
				a.printf("No experts available\n")
				return nil
			}
			t := newTable("TYPE", "NAME", "DESCRIPTION")
			for _, e := range experts {
				t.Row(e.Type, e.Name, e.Description)
			}
			a.printf("%s\n", t.Render())
			return nil
		},
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}
