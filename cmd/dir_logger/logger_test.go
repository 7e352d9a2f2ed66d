package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/w1xm/dir_interface/dir"
	"github.com/w1xm/dir_interface/internal/api"
)

func TestSocketURL(t *testing.T) {
	for _, test := range []struct {
		base, id string
		want     string
	}{
		{"http://localhost:8502", "n1", "ws://localhost:8502/api/nodes/n1/ws"},
		{"https://dir.example.org/", "roof", "wss://dir.example.org/api/nodes/roof/ws"},
		{"http://host/prefix", "a b", "ws://host/prefix/api/nodes/a%20b/ws"},
		{"ws://host:1", "n2", "ws://host:1/api/nodes/n2/ws"},
	} {
		got, err := socketURL(test.base, test.id)
		if err != nil {
			t.Errorf("socketURL(%q, %q): %v", test.base, test.id, err)
			continue
		}
		if got != test.want {
			t.Errorf("socketURL(%q, %q) = %q, want %q", test.base, test.id, got, test.want)
		}
	}
	if _, err := socketURL("ftp://host", "n1"); err == nil {
		t.Error("socketURL accepted ftp scheme")
	}
}

func TestStatusPoint(t *testing.T) {
	s := api.NodeStatus{
		ID:          "n1",
		Backend:     "sim",
		Status:      dir.Status{Beamwidth: 60, Orientation: 1, X: 0, Y: -7},
		Orientation: 1,
	}
	if diff := cmp.Diff(statusTags(s), map[string]string{"node": "n1", "backend": "sim"}); diff != "" {
		t.Errorf("unexpected tags: got(-)/want(+):\n%s", diff)
	}
	want := map[string]interface{}{
		"beamwidth":           60,
		"orientation":         1,
		"x":                   0,
		"y":                   -7,
		"omni":                false,
		"antenna_orientation": 1.0,
	}
	if diff := cmp.Diff(statusFields(s), want); diff != "" {
		t.Errorf("unexpected fields: got(-)/want(+):\n%s", diff)
	}
}

func TestListNodes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/nodes" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[{"id":"a","backend":"sim","status":{"beamwidth":90,"orientation":0,"x":10,"y":0},"omni":true,"antenna_orientation":-1}]`))
	}))
	defer ts.Close()

	nodes, err := listNodes(context.Background(), ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	want := []api.NodeStatus{{
		ID:          "a",
		Backend:     "sim",
		Status:      dir.Status{Beamwidth: 90, Orientation: 0, X: 10, Y: 0},
		Omni:        true,
		Orientation: -1,
	}}
	if diff := cmp.Diff(nodes, want); diff != "" {
		t.Errorf("unexpected nodes: got(-)/want(+):\n%s", diff)
	}

	if _, err := listNodes(context.Background(), ts.URL+"/missing"); err == nil {
		t.Error("listNodes succeeded on 404")
	}
}
