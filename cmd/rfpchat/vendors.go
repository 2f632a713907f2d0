package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"rfp-assistant/internal/domain"
	"rfp-assistant/internal/format"
)

func newVendorsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "vendors",
		Aliases:           []string{"vendor"},
		Short:             "Manage vendors",
		PersistentPreRunE: a.setupSignedIn,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List vendors",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				vendors, err := unwrap(a.client.ListVendors(cmd.Context()))
				if err != nil {
					return err
				}
				printVendors(a, vendors)
				return nil
			},
		},
		&cobra.Command{
			Use:   "search <query>",
			Short: "Search vendors by name or email",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				vendors, err := unwrap(a.client.SearchVendors(cmd.Context(), joinArgs(args)))
				if err != nil {
					return err
				}
				printVendors(a, vendors)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show a vendor",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := unwrap(a.client.GetVendor(cmd.Context(), args[0]))
				if err != nil {
					return err
				}
				a.printf("%s <%s>\n", v.Name, v.Email)
				if v.Notes != "" {
					a.printf("%s\n", v.Notes)
				}
				a.printf("Added %s\n", format.Date(v.CreatedAt, ""))
				return nil
			},
		},
		newVendorCreateCmd(a),
		newVendorUpdateCmd(a),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a vendor",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := unwrap(a.client.DeleteVendor(cmd.Context(), args[0])); err != nil {
					return err
				}
				a.printf("Deleted vendor %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newVendorCreateCmd(a *app) *cobra.Command {
	var in domain.CreateVendorRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a vendor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Name = strings.TrimSpace(in.Name)
			in.Email = strings.TrimSpace(in.Email)
			if errs := format.ValidateVendor(in.Name, in.Email); len(errs) > 0 {
				return errors.New(strings.Join(errs, "; "))
			}
			v, err := unwrap(a.client.CreateVendor(cmd.Context(), in))
			if err != nil {
				return err
			}
			a.printf("Created vendor %s (%s)\n", v.Name, v.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "vendor name")
	cmd.Flags().StringVar(&in.Email, "email", "", "vendor email")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "free-form notes")
	return cmd
}

func newVendorUpdateCmd(a *app) *cobra.Command {
	var name, email, notes string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a vendor's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in domain.UpdateVendorRequest
			flags := cmd.Flags()
			if flags.Changed("name") {
				if !format.IsValidVendorName(name) {
					return errors.New("vendor name must be at least 2 characters long")
				}
				in.Name = &name
			}
			if flags.Changed("email") {
				if !format.IsValidEmail(email) {
					return errors.New("please provide a valid email address")
				}
				in.Email = &email
			}
			if flags.Changed("notes") {
				in.Notes = &notes
			}
			if in.Name == nil && in.Email == nil && in.Notes == nil {
				return errors.New("nothing to update; pass --name, --email or --notes")
			}
			v, err := unwrap(a.client.UpdateVendor(cmd.Context(), args[0], in))
			if err != nil {
				return err
			}
			a.printf("Updated vendor %s <%s>\n", v.Name, v.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "vendor name")
	cmd.Flags().StringVar(&email, "email", "", "vendor email")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	return cmd
}

func printVendors(a *app, vendors []domain.Vendor) {
	if len(vendors) == 0 {
		a.printf("No vendors found\n")
		return
	}
	t := newTable("ID", "NAME", "EMAIL", "ADDED")
	for _, v := range vendors {
		t.Row(v.ID, v.Name, v.Email, format.Date(v.CreatedAt, ""))
	}
	a.printf("%s\n", t.Render())
}
