package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trip-memo/memo"
)

func addSpot(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "spot",
		Aliases: []string{"spots"},
		Short:   "List and remove the spots of a plan",
	}
	addSpotList(cmd)
	addSpotRemove(cmd)
	topLevel.AddCommand(cmd)
}

func addSpotList(parent *cobra.Command) {
	parent.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the spots of a plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			spots, err := s.ctrl.Spots(cmd.Context())
			if err != nil {
				return err
			}
			printSpots(s.out, spots)
			return nil
		},
	})
}

func addSpotRemove(parent *cobra.Command) {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm",
		Aliases: []string{"delete"},
		Short:   "Delete the spot selected with --spot",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if !yes {
				ok, err := s.confirm(fmt.Sprintf("Delete spot %d and all its memos?", s.cfg.Spot))
				if err != nil || !ok {
					return err
				}
			}
			openConfirm := func() { s.ctrl.Dispatch(memo.OpenSpotConfirm{}) }
			openConfirm()
			if err := s.withReauth(cmd.Context(), s.ctrl.DeleteSpot, openConfirm); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(s.out, "spot %d deleted\n", s.cfg.Spot)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation.")
	parent.AddCommand(cmd)
}
