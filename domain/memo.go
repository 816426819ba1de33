package domain

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

// MaxMemoLength is the longest memo text the API accepts, in characters.
const MaxMemoLength = 100

// Mark is the highlight toggle attached to a memo.
type Mark int

const (
	MarkDefault Mark = iota
	MarkFlagged
)

// wire names used by the memo API
const (
	markDefaultName = "White"
	markFlaggedName = "Red"
)

// Toggle returns the opposite mark.
func (m Mark) Toggle() Mark {
	if m == MarkFlagged {
		return MarkDefault
	}
	return MarkFlagged
}

func (m Mark) String() string {
	if m == MarkFlagged {
		return markFlaggedName
	}
	return markDefaultName
}

func (m Mark) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(m.String())
}

func (m *Mark) UnmarshalJSON(data []byte) error {
	var name string
	if err := sonic.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case markDefaultName, "":
		*m = MarkDefault
	case markFlaggedName:
		*m = MarkFlagged
	default:
		return fmt.Errorf("unknown mark %q", name)
	}
	return nil
}

// Memo is a note attached to a spot. It is created and destroyed only by the
// remote API and is read-only here.
type Memo struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Mark      Mark      `json:"marked"`
	CreatedAt time.Time `json:"created_at"`
}

// Spot is a location entry within a plan.
type Spot struct {
	ID   int    `json:"spot_id"`
	Name string `json:"spot_name"`
}

// ValidMemoText reports whether text may be submitted: non-empty and at most
// MaxMemoLength characters.
func ValidMemoText(text string) bool {
	return text != "" && utf8.RuneCountInString(text) <= MaxMemoLength
}

// MemoTextTooLong reports whether text exceeds MaxMemoLength characters.
func MemoTextTooLong(text string) bool {
	return utf8.RuneCountInString(text) > MaxMemoLength
}
