package detector

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPoints(t *testing.T) {
	t.Run("accepts 21 finite points", func(t *testing.T) {
		points := make([]Point3D, NumLandmarks)
		for i := range points {
			points[i] = Point3D{X: float64(i) / 21, Y: 0.5}
		}

		hand, err := FromPoints(points, "Left", 0.8)
		require.NoError(t, err)
		assert.Equal(t, "Left", hand.Handedness)
		assert.Equal(t, 0.8, hand.Score)
		assert.Equal(t, points[PinkyTip], hand.Points[PinkyTip])
	})

	t.Run("rejects wrong landmark count", func(t *testing.T) {
		for _, n := range []int{0, 20, 22} {
			_, err := FromPoints(make([]Point3D, n), "Right", 1)
			assert.ErrorIs(t, err, ErrMalformedLandmarks, "count %d", n)
		}
	})

	t.Run("rejects non-finite coordinates", func(t *testing.T) {
		points := make([]Point3D, NumLandmarks)
		points[IndexTip].Y = math.NaN()
		_, err := FromPoints(points, "Right", 1)
		assert.ErrorIs(t, err, ErrMalformedLandmarks)

		points[IndexTip].Y = math.Inf(1)
		_, err = FromPoints(points, "Right", 1)
		assert.ErrorIs(t, err, ErrMalformedLandmarks)
	})
}

func TestHandLandmarks_Validate(t *testing.T) {
	var nilHand *HandLandmarks
	assert.ErrorIs(t, nilHand.Validate(), ErrMalformedLandmarks)

	hand := OpenPalmLandmarks()
	assert.NoError(t, hand.Validate())
}

func TestDistance2D(t *testing.T) {
	d := Distance2D(Point3D{X: 0, Y: 0, Z: 10}, Point3D{X: 3, Y: 4, Z: -10})
	assert.InDelta(t, 5.0, d, 1e-9, "depth must be ignored")
}

func TestDecodeResponse(t *testing.T) {
	t.Run("keeps valid hands and drops short ones", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[` + pointsJSON(NumLandmarks) + `],"handedness":"Right","score":0.9},` +
			`{"points":[` + pointsJSON(3) + `],"handedness":"Left","score":0.9}]}`)

		hands, err := decodeResponse(line)
		require.NoError(t, err)
		require.Len(t, hands, 1)
		assert.Equal(t, "Right", hands[0].Handedness)
	})

	t.Run("empty hand list", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[]}`))
		require.NoError(t, err)
		assert.Empty(t, hands)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := decodeResponse([]byte(`{`))
		assert.Error(t, err)
	})
}

func pointsJSON(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			s += ","
		}
		s += `{"x":0.5,"y":0.5,"z":0}`
	}
	return s
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		assert.NoError(t, err)
		assert.Nil(t, hands)
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{ThumbsUpLandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		assert.NoError(t, err)
		assert.Len(t, hands, 2)
	})

	t.Run("plays queued frames before configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{OpenPalmLandmarks()})
		mock.Queue(nil, []HandLandmarks{FistLandmarks()})

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		assert.Nil(t, first)
		assert.Equal(t, FistLandmarks(), second[0])
		assert.Equal(t, OpenPalmLandmarks(), third[0])
		assert.Equal(t, 3, mock.Calls())
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		assert.Equal(t, expectedErr, err)
		assert.Nil(t, hands)
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		assert.NoError(t, NewMockDetector().Close())
	})
}

func TestFirstHand(t *testing.T) {
	assert.Nil(t, FirstHand(nil))

	hands := []HandLandmarks{ThumbsUpLandmarks(), OpenPalmLandmarks()}
	assert.Equal(t, &hands[0], FirstHand(hands))
}

func TestPoseLandmarks(t *testing.T) {
	open := [5]bool{false, true, false, true, false}
	hand := PoseLandmarks(open)

	tips := []int{IndexTip, MiddleTip, RingTip, PinkyTip}
	pips := []int{IndexPIP, MiddlePIP, RingPIP, PinkyPIP}
	for i := range tips {
		extended := hand.Points[tips[i]].Y < hand.Points[pips[i]].Y
		assert.Equal(t, open[i+1], extended, "finger %d", i+1)
	}

	wrist := hand.Points[Wrist]
	thumbOut := Distance2D(wrist, hand.Points[ThumbTip]) > Distance2D(wrist, hand.Points[ThumbIP])
	assert.False(t, thumbOut)

	thumbOut = Distance2D(wrist, PoseLandmarks([5]bool{true}).Points[ThumbTip]) > Distance2D(wrist, hand.Points[ThumbIP])
	assert.True(t, thumbOut)
}

func TestThumbsUpLandmarks(t *testing.T) {
	landmarks := ThumbsUpLandmarks()

	if landmarks.Points[ThumbTip].Y >= landmarks.Points[ThumbIP].Y {
		t.Error("thumb tip should be above thumb IP (lower Y value)")
	}
	for _, pair := range [][2]int{{IndexTip, IndexPIP}, {MiddleTip, MiddlePIP}, {RingTip, RingPIP}, {PinkyTip, PinkyPIP}} {
		if landmarks.Points[pair[0]].Y < landmarks.Points[pair[1]].Y {
			t.Errorf("landmark %d should be curled below its PIP", pair[0])
		}
	}
}
