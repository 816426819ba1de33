package domain

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestMarkWireNames(t *testing.T) {
	req := CreateMemoRequest{PlanID: "abc", SpotID: 5, Text: "x", Mark: MarkFlagged}

	payload, err := sonic.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	if !strings.Contains(string(payload), `"marked":"Red"`) {
		t.Fatalf("expected flagged mark to encode as Red, got %s", payload)
	}
	if !strings.Contains(string(payload), `"password":null`) {
		t.Fatalf("expected null password for public plan, got %s", payload)
	}

	var memo Memo
	if err := sonic.Unmarshal([]byte(`{"id":1,"text":"t","marked":"White"}`), &memo); err != nil {
		t.Fatalf("unmarshal memo: %v", err)
	}
	if memo.Mark != MarkDefault {
		t.Fatalf("expected default mark, got %v", memo.Mark)
	}
	if err := sonic.Unmarshal([]byte(`{"marked":"Blue"}`), &memo); err == nil {
		t.Fatalf("expected unknown mark to be rejected")
	}
}

func TestMarkToggle(t *testing.T) {
	if MarkDefault.Toggle() != MarkFlagged {
		t.Fatalf("default should toggle to flagged")
	}
	if MarkFlagged.Toggle() != MarkDefault {
		t.Fatalf("flagged should toggle to default")
	}
}

func TestValidMemoText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "empty", text: "", want: false},
		{name: "short", text: "集合は9時", want: true},
		{name: "limit", text: strings.Repeat("あ", MaxMemoLength), want: true},
		{name: "over", text: strings.Repeat("a", MaxMemoLength+1), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidMemoText(tt.text); got != tt.want {
				t.Fatalf("ValidMemoText(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCacheKeys(t *testing.T) {
	if got := MemoListKey("abc", 5); got != "/api/memo/read?plan_id=abc&spot_id=5" {
		t.Fatalf("unexpected memo list key: %s", got)
	}
	if got := SpotListKey("abc"); got != "/api/spot/readSpotList?planId=abc" {
		t.Fatalf("unexpected spot list key: %s", got)
	}
}
