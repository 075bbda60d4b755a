package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DoorPosition is either OPEN or CLOSED. It is used for both the current and
// the target position of a door.
type DoorPosition string

const (
	DoorOpen   DoorPosition = "OPEN"
	DoorClosed DoorPosition = "CLOSED"
)

// HomeKit characteristic codes for TargetDoorState.
const (
	homeKitOpen   = "0"
	homeKitClosed = "1"
)

var ErrInvalidPosition = errors.New("invalid door position: must be OPEN or CLOSED")

// Valid reports whether p is one of the two known positions.
func (p DoorPosition) Valid() bool {
	return p == DoorOpen || p == DoorClosed
}

func (p DoorPosition) String() string { return string(p) }

// ParseDoorPosition accepts OPEN/CLOSED in any case and the HomeKit codes 0/1.
func ParseDoorPosition(s string) (DoorPosition, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DoorOpen), homeKitOpen:
		return DoorOpen, nil
	case string(DoorClosed), homeKitClosed:
		return DoorClosed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
}

// UnmarshalJSON rejects unknown positions at decode time.
func (p *DoorPosition) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDoorPosition(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// DoorState is the observable state of one door.
type DoorState struct {
	Current    DoorPosition `json:"current"`    // OPEN | CLOSED
	Target     DoorPosition `json:"target"`     // OPEN | CLOSED
	Obstructed bool         `json:"obstructed"` // no sensor, always false
}

// InitialDoorState is the state every door starts in.
func InitialDoorState() DoorState {
	return DoorState{Current: DoorClosed, Target: DoorClosed}
}
