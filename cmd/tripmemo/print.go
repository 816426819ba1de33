package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"trip-memo/domain"
)

const timeLayout = "2006-01-02 15:04"

func printMemos(w io.Writer, memos []domain.Memo) {
	if len(memos) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(w, " no memos")
		return
	}

	flagged := color.New(color.FgRed)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID", "MARK", "MEMO", "CREATED")
	for _, m := range memos {
		text := m.Text
		if m.Mark == domain.MarkFlagged {
			text = flagged.Sprint(text)
		}
		created := ""
		if !m.CreatedAt.IsZero() {
			created = m.CreatedAt.Local().Format(timeLayout)
		}
		tbl.AddRow(strconv.Itoa(m.ID), m.Mark.String(), text, created)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func printSpots(w io.Writer, spots []domain.Spot) {
	if len(spots) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(w, " no spots")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID", "SPOT")
	for _, s := range spots {
		tbl.AddRow(strconv.Itoa(s.ID), s.Name)
	}
	_, _ = fmt.Fprintln(w, tbl)
}
