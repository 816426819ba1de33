package memo

import (
	"strings"
	"testing"

	"trip-memo/domain"
)

func allActions() []Action {
	return []Action{
		SetLoading{Pending: true},
		SetLoading{Pending: false},
		CreateMemoSuccess{},
		CreateMemoFailed{},
		SetMemoText{Text: "集合は9時"},
		ToggleMark{},
		SelectDeleteTarget{MemoID: 42},
		DeleteMemoFailed{},
		CloseMemoConfirm{},
		OpenSpotConfirm{},
		CloseSpotConfirm{},
		DeleteSpotFailed{},
		ClosePasswordPrompt{},
	}
}

func TestReduceIsDeterministic(t *testing.T) {
	start := State{MemoText: "draft", Mark: domain.MarkFlagged, Pending: true, ConfirmDeleteMemoOpen: true}
	for _, a := range allActions() {
		first := Reduce(start, a)
		second := Reduce(start, a)
		if first != second {
			t.Fatalf("%T: got %+v then %+v", a, first, second)
		}
	}
}

func TestReduceTransitions(t *testing.T) {
	base := State{MemoText: "draft", Mark: domain.MarkFlagged, Pending: true}

	tests := []struct {
		name   string
		from   State
		action Action
		want   State
	}{
		{
			name:   "set loading touches only pending",
			from:   State{MemoText: "x", PasswordPromptOpen: true},
			action: SetLoading{Pending: true},
			want:   State{MemoText: "x", PasswordPromptOpen: true, Pending: true},
		},
		{
			name:   "create success clears draft",
			from:   base,
			action: CreateMemoSuccess{},
			want:   State{},
		},
		{
			name:   "create failed keeps draft",
			from:   base,
			action: CreateMemoFailed{},
			want:   State{MemoText: "draft", Mark: domain.MarkFlagged, PasswordPromptOpen: true},
		},
		{
			name:   "set memo text is verbatim",
			from:   State{},
			action: SetMemoText{Text: strings.Repeat("a", 150)},
			want:   State{MemoText: strings.Repeat("a", 150)},
		},
		{
			name:   "toggle mark",
			from:   State{},
			action: ToggleMark{},
			want:   State{Mark: domain.MarkFlagged},
		},
		{
			name:   "select delete target",
			from:   State{TargetMemoID: 1, TargetSelected: true},
			action: SelectDeleteTarget{MemoID: 42},
			want:   State{TargetMemoID: 42, TargetSelected: true, ConfirmDeleteMemoOpen: true},
		},
		{
			name:   "delete memo failed",
			from:   State{ConfirmDeleteMemoOpen: true, Pending: true, TargetMemoID: 42, TargetSelected: true},
			action: DeleteMemoFailed{},
			want:   State{PasswordPromptOpen: true, TargetMemoID: 42, TargetSelected: true},
		},
		{
			name:   "close memo confirm",
			from:   State{ConfirmDeleteMemoOpen: true},
			action: CloseMemoConfirm{},
			want:   State{},
		},
		{
			name:   "open spot confirm",
			from:   State{},
			action: OpenSpotConfirm{},
			want:   State{ConfirmDeleteSpotOpen: true},
		},
		{
			name:   "close spot confirm",
			from:   State{ConfirmDeleteSpotOpen: true},
			action: CloseSpotConfirm{},
			want:   State{},
		},
		{
			name:   "delete spot failed",
			from:   State{ConfirmDeleteSpotOpen: true, Pending: true},
			action: DeleteSpotFailed{},
			want:   State{PasswordPromptOpen: true},
		},
		{
			name:   "close password prompt",
			from:   State{PasswordPromptOpen: true, MemoText: "keep"},
			action: ClosePasswordPrompt{},
			want:   State{MemoText: "keep"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reduce(tt.from, tt.action); got != tt.want {
				t.Fatalf("Reduce(%+v, %T) = %+v, want %+v", tt.from, tt.action, got, tt.want)
			}
		})
	}
}

func TestRejectionsConvergeOnPasswordPrompt(t *testing.T) {
	from := State{Pending: true, ConfirmDeleteMemoOpen: true, ConfirmDeleteSpotOpen: true}
	for _, a := range []Action{CreateMemoFailed{}, DeleteMemoFailed{}, DeleteSpotFailed{}} {
		got := Reduce(from, a)
		if !got.PasswordPromptOpen {
			t.Fatalf("%T: expected password prompt open", a)
		}
		if got.Pending {
			t.Fatalf("%T: expected pending cleared", a)
		}
	}
	if got := Reduce(from, DeleteMemoFailed{}); got.ConfirmDeleteMemoOpen {
		t.Fatalf("memo confirmation should close on rejection")
	}
	if got := Reduce(from, DeleteSpotFailed{}); got.ConfirmDeleteSpotOpen {
		t.Fatalf("spot confirmation should close on rejection")
	}
}

type bogusAction struct{}

func (bogusAction) action() {}

func TestReduceUnknownActionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown action")
		}
	}()
	Reduce(State{}, bogusAction{})
}

func TestMemoTextError(t *testing.T) {
	if msg := (State{MemoText: strings.Repeat("あ", 100)}).MemoTextError(); msg != "" {
		t.Fatalf("unexpected error for 100 characters: %q", msg)
	}
	if msg := (State{MemoText: strings.Repeat("あ", 101)}).MemoTextError(); msg == "" {
		t.Fatalf("expected error for 101 characters")
	}
}
