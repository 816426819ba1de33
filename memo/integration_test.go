package memo_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"

	"trip-memo/client"
	"trip-memo/domain"
	"trip-memo/memo"
	"trip-memo/storage"
)

// memoAPI is an in-memory stand-in for the memo API of one plan.
type memoAPI struct {
	mu       sync.Mutex
	password string
	memos    []domain.Memo
	nextID   int
	reads    int
}

func (a *memoAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch r.URL.Path {
	case domain.MemoListPath:
		a.reads++
		data, _ := sonic.Marshal(a.memos)
		_, _ = w.Write(data)
	case "/api/memo/create":
		body, _ := io.ReadAll(r.Body)
		var req domain.CreateMemoRequest
		if err := sonic.Unmarshal(body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Password == nil || *req.Password != a.password {
			_, _ = w.Write([]byte("false"))
			return
		}
		a.nextID++
		a.memos = append(a.memos, domain.Memo{ID: a.nextID, Text: req.Text, Mark: req.Mark, CreatedAt: time.Unix(0, 0).UTC()})
		_, _ = w.Write([]byte("true"))
	case "/api/spot/delete":
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("404"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestCreateMemoRefreshesSubscribedList(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	api := &memoAPI{password: "pw"}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	cl := client.New(srv.URL)
	cache := storage.NewCache(cl, rc, time.Minute, logger)
	wrong := "nope"
	ctrl := memo.NewController(memo.Config{
		PlanID:   "abc",
		SpotID:   5,
		Password: &wrong,
		Remote:   cl,
		Cache:    cache,
		Reporter: memo.ReporterFunc(func(err error) { t.Errorf("unexpected report: %v", err) }),
		Logger:   logger,
	})
	ctx := context.Background()

	initial, err := ctrl.Memos(ctx)
	if err != nil {
		t.Fatalf("initial memos: %v", err)
	}
	if len(initial) != 0 {
		t.Fatalf("expected empty list, got %#v", initial)
	}

	updates, cancel := cache.Subscribe(ctrl.MemoListKey())
	defer cancel()

	ctrl.Dispatch(memo.SetMemoText{Text: "集合は9時"})
	if got := ctrl.CreateMemo(ctx); got != memo.OutcomeRejected {
		t.Fatalf("expected rejection with wrong password, got %v", got)
	}
	if !ctrl.State().PasswordPromptOpen {
		t.Fatalf("expected password prompt")
	}

	ctrl.Reauthorize("pw")
	if got := ctrl.CreateMemo(ctx); got != memo.OutcomeApplied {
		t.Fatalf("expected applied, got %v", got)
	}
	st := ctrl.State()
	if st.MemoText != "" || st.Pending {
		t.Fatalf("unexpected state: %+v", st)
	}

	select {
	case data := <-updates:
		var memos []domain.Memo
		if err := sonic.Unmarshal(data, &memos); err != nil {
			t.Fatalf("decode update: %v", err)
		}
		if len(memos) != 1 || memos[0].Text != "集合は9時" {
			t.Fatalf("unexpected refreshed list: %#v", memos)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber was not notified")
	}

	memos, err := ctrl.Memos(ctx)
	if err != nil {
		t.Fatalf("memos: %v", err)
	}
	if len(memos) != 1 {
		t.Fatalf("expected cached refreshed list, got %#v", memos)
	}
	api.mu.Lock()
	reads := api.reads
	api.mu.Unlock()
	if reads != 2 {
		t.Fatalf("expected one initial read and one revalidation, got %d", reads)
	}
}

func TestDeleteSpotNotFoundIsReported(t *testing.T) {
	srv := httptest.NewServer(&memoAPI{})
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	cl := client.New(srv.URL)
	var reported []error
	ctrl := memo.NewController(memo.Config{
		PlanID:   "abc",
		SpotID:   5,
		Remote:   cl,
		Cache:    storage.NewCache(cl, nil, 0, logger),
		Reporter: memo.ReporterFunc(func(err error) { reported = append(reported, err) }),
		Logger:   logger,
	})

	ctrl.Dispatch(memo.OpenSpotConfirm{})
	if got := ctrl.DeleteSpot(context.Background()); got != memo.OutcomeFailed {
		t.Fatalf("expected failure, got %v", got)
	}
	if len(reported) != 1 || !memo.IsNotFound(reported[0]) {
		t.Fatalf("expected not found report, got %v", reported)
	}
	if ctrl.Closed() {
		t.Fatalf("controller must stay open")
	}
}
