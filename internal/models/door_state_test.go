package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDoorPosition(t *testing.T) {
	cases := []struct {
		in      string
		want    DoorPosition
		wantErr bool
	}{
		{"OPEN", DoorOpen, false},
		{" closed ", DoorClosed, false},
		{"0", DoorOpen, false},
		{"1", DoorClosed, false},
		{"opening", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseDoorPosition(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidPosition) {
				t.Fatalf("ParseDoorPosition(%q): want ErrInvalidPosition, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseDoorPosition(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestDoorStateJSON(t *testing.T) {
	b, err := json.Marshal(InitialDoorState())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"current":"CLOSED","target":"CLOSED","obstructed":false}` {
		t.Fatalf("unexpected json: %s", b)
	}

	var st DoorState
	if err := json.Unmarshal([]byte(`{"current":"open","target":"1"}`), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.Current != DoorOpen || st.Target != DoorClosed {
		t.Fatalf("unexpected state: %+v", st)
	}
	if err := json.Unmarshal([]byte(`{"current":"ajar"}`), &st); err == nil {
		t.Fatalf("expected error for unknown position")
	}
}
