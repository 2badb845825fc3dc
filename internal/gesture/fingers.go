package gesture

import (
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
)

// Finger positions within a FingerState.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

// FingerState records which fingers are extended, ordered thumb, index,
// middle, ring, pinky.
type FingerState [NumFingers]bool

// tipPIP pairs the fingertip and PIP joint for index through pinky.
var tipPIP = [NumFingers - 1][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyPIP},
}

// ExtractFingerState derives the open/closed flags of a hand.
//
// A long finger is extended when its tip is above its PIP joint in image
// space (smaller Y). The thumb is extended when its tip lies farther from the
// wrist than its IP joint does. This assumes a roughly upright hand and does
// not use handedness. The hand must already be validated.
func ExtractFingerState(hand *detector.HandLandmarks) FingerState {
	var fs FingerState

	for i, pair := range tipPIP {
		fs[i+1] = hand.Points[pair[0]].Y < hand.Points[pair[1]].Y
	}

	wrist := hand.Points[detector.Wrist]
	fs[Thumb] = detector.Distance2D(wrist, hand.Points[detector.ThumbTip]) >
		detector.Distance2D(wrist, hand.Points[detector.ThumbIP])

	return fs
}

// F builds a FingerState from 0/1 flags, mirroring how rule tables are written.
func F(thumb, index, middle, ring, pinky int) FingerState {
	return FingerState{thumb != 0, index != 0, middle != 0, ring != 0, pinky != 0}
}

// String renders the state as five binary digits, thumb first.
func (fs FingerState) String() string {
	b := make([]byte, NumFingers)
	for i, open := range fs {
		if open {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// ParseFingerState parses the form produced by String.
func ParseFingerState(s string) (FingerState, error) {
	var fs FingerState
	if len(s) != NumFingers {
		return fs, fmt.Errorf("finger state %q: want %d digits", s, NumFingers)
	}
	for i := 0; i < NumFingers; i++ {
		switch s[i] {
		case '0':
		case '1':
			fs[i] = true
		default:
			return FingerState{}, fmt.Errorf("finger state %q: invalid digit %q", s, s[i])
		}
	}
	return fs, nil
}

// AllFingerStates returns the 32 possible states in binary order, 00000 first.
func AllFingerStates() []FingerState {
	states := make([]FingerState, 0, 1<<NumFingers)
	for n := 0; n < 1<<NumFingers; n++ {
		var fs FingerState
		for i := 0; i < NumFingers; i++ {
			fs[i] = n&(1<<(NumFingers-1-i)) != 0
		}
		states = append(states, fs)
	}
	return states
}

// MarshalText implements encoding.TextMarshaler so states serialize as "10111".
func (fs FingerState) MarshalText() ([]byte, error) {
	return []byte(fs.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (fs *FingerState) UnmarshalText(b []byte) error {
	parsed, err := ParseFingerState(string(b))
	if err != nil {
		return err
	}
	*fs = parsed
	return nil
}
