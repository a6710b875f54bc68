package game

import (
	"encoding/json"
	"testing"
)

func TestEntityJSONCarriesKindFieldsOnly(t *testing.T) {
	tests := []struct {
		kind EntityKind
		key  string
	}{
		{KindSpikes, "active"},
		{KindPanel, "active"},
		{KindDoor, "open"},
		{KindBlock, "grabbed"},
		{KindMural, "read"},
		{KindSign, "read"},
		{KindSwitch, "on"},
		{KindLever, "state"},
	}
	all := []string{"active", "open", "grabbed", "read", "on", "state"}
	for _, tt := range tests {
		b, err := json.Marshal(newEntity("e", tt.kind, 1, 2, 3, 4))
		if err != nil {
			t.Fatalf("%s: %v", tt.kind, err)
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("%s: %v", tt.kind, err)
		}
		if m["type"] != string(tt.kind) || m["w"] != float64(3) {
			t.Fatalf("%s: %s", tt.kind, b)
		}
		for _, k := range all {
			if _, ok := m[k]; ok != (k == tt.key) {
				t.Errorf("%s: field %q present=%v", tt.kind, k, ok)
			}
		}
	}

	b, _ := json.Marshal(newEntity("plate_a", KindPlate, 0, 0, 1, 1))
	if string(b) != `{"id":"plate_a","type":"plate","x":0,"y":0,"w":1,"h":1}` {
		t.Fatalf("plate = %s", b)
	}
}
