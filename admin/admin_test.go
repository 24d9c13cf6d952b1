package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/softportal/hal/fifo"
	"github.com/ardnew/softportal/hid"
	"github.com/ardnew/softportal/pkg"
	"github.com/ardnew/softportal/portal"
	"github.com/ardnew/softportal/toy"
)

// fakeController records presence signals and returns canned errors.
type fakeController struct {
	snap    portal.Snapshot
	err     error
	inserts []int
	removes []int
}

func (f *fakeController) Insert(_ context.Context, index int) error {
	f.inserts = append(f.inserts, index)
	return f.err
}

func (f *fakeController) Remove(_ context.Context, index int) error {
	f.removes = append(f.removes, index)
	return f.err
}

func (f *fakeController) Snapshot() portal.Snapshot {
	return f.snap
}

func (f *fakeController) Stats() portal.Stats {
	return f.snap.Stats
}

func newFake() *fakeController {
	return &fakeController{
		snap: portal.Snapshot{
			ID: "test",
			Slots: []portal.SlotState{
				{Index: 0, Status: portal.SlotPresent, Key: "slot-00.bin", Blocks: 64},
				{Index: 1, Status: portal.SlotEmpty},
			},
			Stats: portal.Stats{Reports: 7, Responses: 5},
		},
	}
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestListSlots(t *testing.T) {
	s := New(newFake())
	rec := do(t, s.Handler(), http.MethodGet, "/slots")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		ID    string `json:"id"`
		Slots []struct {
			Index  int    `json:"index"`
			Status string `json:"status"`
			Key    string `json:"key"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "test", body.ID)
	require.Len(t, body.Slots, 2)
	assert.Equal(t, "present", body.Slots[0].Status)
	assert.Equal(t, "slot-00.bin", body.Slots[0].Key)
	assert.Equal(t, "empty", body.Slots[1].Status)
}

func TestGetSlot(t *testing.T) {
	s := New(newFake())

	tests := []struct {
		path string
		want int
	}{
		{"/slots/0", http.StatusOK},
		{"/slots/1", http.StatusOK},
		{"/slots/2", http.StatusBadRequest},
		{"/slots/-1", http.StatusBadRequest},
		{"/slots/first", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodGet, tt.path)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, s.Handler(), http.MethodGet, "/slots/0")
	var slot portal.SlotState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slot))
	assert.Equal(t, 64, slot.Blocks)
}

func TestPresence(t *testing.T) {
	f := newFake()
	s := New(f)

	rec := do(t, s.Handler(), http.MethodPost, "/slots/3/insert")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s.Handler(), http.MethodPost, "/slots/3/remove")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, []int{3}, f.inserts)
	assert.Equal(t, []int{3}, f.removes)

	rec = do(t, s.Handler(), http.MethodGet, "/slots/3/insert")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPresence_ErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("slot 9: %w", pkg.ErrInvalidSlot), http.StatusBadRequest},
		{fmt.Errorf("queue full: %w", pkg.ErrBusy), http.StatusServiceUnavailable},
		{fmt.Errorf("load: %w", pkg.ErrToyNotFound), http.StatusNotFound},
		{fmt.Errorf("load: %w", pkg.ErrToyCorrupt), http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{pkg.ErrTransport, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			f := newFake()
			f.err = tt.err
			rec := do(t, New(f).Handler(), http.MethodPost, "/slots/0/insert")
			assert.Equal(t, tt.want, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body.Error)
		})
	}
}

func TestStats(t *testing.T) {
	rec := do(t, New(newFake()).Handler(), http.MethodGet, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats portal.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, uint64(7), stats.Reports)
	assert.Equal(t, uint64(5), stats.Responses)
}

func TestPortalSnapshot(t *testing.T) {
	dev := fifo.New(t.TempDir(), hid.PortalReportDescriptor)
	p, err := portal.New(portal.Config{Slots: 2}, dev, toy.NewMemoryStore())
	require.NoError(t, err)

	rec := do(t, New(p).Handler(), http.MethodGet, "/slots")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap portal.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, p.ID(), snap.ID)
	assert.Len(t, snap.Slots, 2)
	assert.False(t, snap.Running)

	// the engine rejects indexes beyond its slot count before queueing
	rec = do(t, New(p).Handler(), http.MethodPost, "/slots/5/insert")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(newFake()).Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
