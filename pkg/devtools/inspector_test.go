package devtools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/cachestore/pkg/cachestore"
)

type key string

const (
	count key = "count"
	onTap key = "onTap"
)

func newTestServer(t *testing.T) (*Inspector, *httptest.Server) {
	t.Helper()
	insp := NewInspector(nil)
	srv := httptest.NewServer(insp.Handler())
	t.Cleanup(func() {
		insp.Close()
		srv.Close()
	})
	return insp, srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestListStores(t *testing.T) {
	insp, srv := newTestServer(t)
	first := insp.Register(Inspect("first", cachestore.New(map[key]any{count: 1})))
	second := insp.Register(Inspect("second", cachestore.New[key](nil)))

	var infos []StoreInfo
	if code := getJSON(t, srv.URL+"/stores", &infos); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(infos))
	}
	if infos[0].ID != first || infos[1].ID != second {
		t.Errorf("stores out of registration order: %+v", infos)
	}
	if infos[0].Name != "first" || len(infos[0].Keys) != 1 || infos[0].Keys[0] != "count" {
		t.Errorf("first store info = %+v", infos[0])
	}
}

func TestStoreState(t *testing.T) {
	insp, srv := newTestServer(t)
	c := cachestore.New(map[key]any{count: 3, onTap: func() {}})
	id := insp.Register(Inspect("counter", c))

	c.Set(count, 4)

	var state StoreState
	if code := getJSON(t, srv.URL+"/stores/"+id, &state); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if string(state.Values["count"]) != "4" {
		t.Errorf("count = %s, want 4", state.Values["count"])
	}
	if string(state.Values["onTap"]) != `"<func()>"` {
		t.Errorf("onTap = %s, want type name", state.Values["onTap"])
	}
	if state.Changes != 1 {
		t.Errorf("changes = %d, want 1", state.Changes)
	}
}

func TestStoreNotFound(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/stores/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "CS130" {
		t.Errorf("code = %v, want CS130", body["code"])
	}
}

func dial(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stores/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestStream(t *testing.T) {
	insp, srv := newTestServer(t)
	c := cachestore.New(map[key]any{count: 0})
	id := insp.Register(Inspect("counter", c))

	conn := dial(t, srv, id)

	snap := readMessage(t, conn)
	if snap.Type != MessageSnapshot || string(snap.Values["count"]) != "0" {
		t.Fatalf("first message = %+v", snap)
	}

	cachestore.Update(c, count, func(n *int) { *n += 5 })

	change := readMessage(t, conn)
	if change.Type != MessageChange || change.Key != "count" || string(change.Value) != "5" {
		t.Errorf("change message = %+v", change)
	}
	if change.Seq != 1 || change.StoreID != id || change.Store != "counter" {
		t.Errorf("change metadata = %+v", change)
	}

	insp.Unregister(id)

	removed := readMessage(t, conn)
	if removed.Type != MessageRemoved {
		t.Errorf("last message = %+v", removed)
	}
}

func TestStreamScopedStore(t *testing.T) {
	insp, srv := newTestServer(t)
	parent := cachestore.New(map[key]any{count: 0, onTap: "x"})
	scope := cachestore.Scope(parent, cachestore.Subset(count))
	id := insp.Register(Inspect("scope", scope))

	conn := dial(t, srv, id)
	readMessage(t, conn)

	parent.Set(onTap, "y")
	parent.Set(count, 2)

	change := readMessage(t, conn)
	if change.Key != "count" || string(change.Value) != "2" {
		t.Errorf("scope stream delivered %+v, want the count change only", change)
	}
}

func TestUnregisterStopsObserving(t *testing.T) {
	insp := NewInspector(nil)
	c := cachestore.New(map[key]any{count: 0})
	id := insp.Register(Inspect("counter", c))

	insp.Unregister(id)
	insp.Unregister(id)
	c.Set(count, 1)

	if len(insp.Stores()) != 0 {
		t.Error("store should be gone")
	}
}

func TestInspectValue(t *testing.T) {
	c := cachestore.New(map[key]any{count: 7})
	v := Inspect("counter", c)

	if got, ok := v.Value("count"); !ok || got != 7 {
		t.Errorf("Value(count) = %v, %v", got, ok)
	}
	if _, ok := v.Value("missing"); ok {
		t.Error("Value(missing) should report false")
	}
}

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "number", in: 3, want: `3`},
		{name: "html kept", in: "<b>&</b>", want: `"<b>&</b>"`},
		{name: "func type name", in: func(int) bool { return false }, want: `"<func(int) bool>"`},
		{name: "channel type name", in: make(chan int), want: `"<chan int>"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(encodeValue(tt.in)); got != tt.want {
				t.Errorf("encodeValue() = %s, want %s", got, tt.want)
			}
		})
	}
}
