package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"trip-memo/domain"
	"trip-memo/memo"
)

func addMemo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "memo",
		Aliases: []string{"memos"},
		Short:   "List, add and remove the memos of a spot",
	}
	addMemoList(cmd)
	addMemoAdd(cmd)
	addMemoRemove(cmd)
	topLevel.AddCommand(cmd)
}

func addMemoList(parent *cobra.Command) {
	parent.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the memos of a spot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			memos, err := s.ctrl.Memos(cmd.Context())
			if err != nil {
				return err
			}
			printMemos(s.out, memos)
			return nil
		},
	})
}

func addMemoAdd(parent *cobra.Command) {
	var flagged bool
	var text string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a memo to a spot",
		Example: `
tripmemo memo add --plan abc --spot 5 meet at 9
tripmemo memo add --plan abc --spot 5 --flag bring tickets
`,
		Args: func(cmd *cobra.Command, args []string) error {
			text = strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return errors.New("requires a memo")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			s.ctrl.Dispatch(memo.SetMemoText{Text: text})
			if flagged {
				s.ctrl.Dispatch(memo.ToggleMark{})
			}
			if msg := s.ctrl.State().MemoTextError(); msg != "" {
				return errors.New(msg)
			}

			updates, cancel := s.cache.Subscribe(s.ctrl.MemoListKey())
			defer cancel()

			if err := s.withReauth(cmd.Context(), s.ctrl.CreateMemo, nil); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(s.out, "memo added")
			select {
			case data := <-updates:
				var memos []domain.Memo
				if err := sonic.Unmarshal(data, &memos); err == nil {
					printMemos(s.out, memos)
				}
			default:
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagged, "flag", false, "Mark the memo red.")
	parent.AddCommand(cmd)
}

func addMemoRemove(parent *cobra.Command) {
	parent.AddCommand(&cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a memo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid memo id %q", args[0])
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			selectTarget := func() { s.ctrl.Dispatch(memo.SelectDeleteTarget{MemoID: id}) }
			selectTarget()
			if err := s.withReauth(cmd.Context(), s.ctrl.DeleteMemo, selectTarget); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(s.out, "memo %d deleted\n", id)
			return nil
		},
	})
}
