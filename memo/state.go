package memo

import (
	"fmt"

	"trip-memo/domain"
)

// State is the local state of one memo modal. The zero value is the initial
// state.
type State struct {
	MemoText              string
	Mark                  domain.Mark
	Pending               bool
	ConfirmDeleteMemoOpen bool
	ConfirmDeleteSpotOpen bool
	PasswordPromptOpen    bool
	TargetMemoID          int
	TargetSelected        bool
}

// MemoTextError returns the message shown while the draft is too long to
// submit, or "" when it is acceptable.
func (s State) MemoTextError() string {
	if domain.MemoTextTooLong(s.MemoText) {
		return fmt.Sprintf("memo must be %d characters or fewer", domain.MaxMemoLength)
	}
	return ""
}

// Action is a state transition request. The set of actions is closed.
type Action interface {
	action()
}

// SetLoading sets Pending and nothing else.
type SetLoading struct{ Pending bool }

// CreateMemoSuccess resets the draft after the server created the memo.
type CreateMemoSuccess struct{}

// CreateMemoFailed opens the password prompt and keeps the draft.
type CreateMemoFailed struct{}

// SetMemoText replaces the draft verbatim.
type SetMemoText struct{ Text string }

type ToggleMark struct{}

// SelectDeleteTarget picks the memo to delete and opens its confirmation.
type SelectDeleteTarget struct{ MemoID int }

type DeleteMemoFailed struct{}

type CloseMemoConfirm struct{}

type OpenSpotConfirm struct{}

type CloseSpotConfirm struct{}

type DeleteSpotFailed struct{}

type ClosePasswordPrompt struct{}

func (SetLoading) action() {}
func (CreateMemoSuccess) action() {}
func (CreateMemoFailed) action() {}
func (SetMemoText) action() {}
func (ToggleMark) action() {}
func (SelectDeleteTarget) action() {}
func (DeleteMemoFailed) action() {}
func (CloseMemoConfirm) action() {}
func (OpenSpotConfirm) action() {}
func (CloseSpotConfirm) action() {}
func (DeleteSpotFailed) action() {}
func (ClosePasswordPrompt) action() {}

// Reduce returns the state after applying a. It has no side effects.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetLoading:
		s.Pending = a.Pending
	case CreateMemoSuccess:
		s.MemoText = ""
		s.Mark = domain.MarkDefault
		s.Pending = false
	case CreateMemoFailed:
		s.PasswordPromptOpen = true
		s.Pending = false
	case SetMemoText:
		s.MemoText = a.Text
	case ToggleMark:
		s.Mark = s.Mark.Toggle()
	case SelectDeleteTarget:
		s.TargetMemoID = a.MemoID
		s.TargetSelected = true
		s.ConfirmDeleteMemoOpen = true
	case DeleteMemoFailed:
		s.ConfirmDeleteMemoOpen = false
		s.PasswordPromptOpen = true
		s.Pending = false
	case CloseMemoConfirm:
		s.ConfirmDeleteMemoOpen = false
	case OpenSpotConfirm:
		s.ConfirmDeleteSpotOpen = true
	case CloseSpotConfirm:
		s.ConfirmDeleteSpotOpen = false
	case DeleteSpotFailed:
		s.ConfirmDeleteSpotOpen = false
		s.PasswordPromptOpen = true
		s.Pending = false
	case ClosePasswordPrompt:
		s.PasswordPromptOpen = false
	default:
		panic(fmt.Sprintf("memo.Reduce: unknown action %T", a))
	}
	return s
}
