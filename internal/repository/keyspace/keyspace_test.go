package keyspace

import "testing"

func TestKeys(t *testing.T) {
	k := New("")
	if k.Prefix() != DefaultPrefix {
		t.Fatalf("Prefix() = %q", k.Prefix())
	}

	tests := []struct {
		got, want string
	}{
		{k.Meta("p"), "qbm25:#meta:p"},
		{k.MetaPattern(), "qbm25:#meta:*"},
		{k.Units("p"), "qbm25:#units:p"},
		{k.Index("p"), "qbm25:p:idx"},
		{k.DocPrefix("p"), "qbm25:p:"},
		{k.Doc("p", "doc-1"), "qbm25:p:doc-1"},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}

func TestDocID(t *testing.T) {
	k := New("t:")

	id, ok := k.DocID("p", "t:p:doc-1")
	if !ok || id != "doc-1" {
		t.Errorf("DocID = %q, %v", id, ok)
	}
	if _, ok := k.DocID("p", "t:other:doc-1"); ok {
		t.Error("DocID accepted a key from another collection")
	}
}
