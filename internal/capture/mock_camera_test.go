package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func closeAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}

func TestMockCamera_Playback(t *testing.T) {
	frames := BlankFrames(2, 64, 48)
	defer closeAll(frames)

	cam := NewMockCamera(frames, false)
	require.NoError(t, cam.Open())
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, 64, f.Cols())
		assert.Equal(t, 48, f.Rows())
		f.Close()
	}

	_, err := cam.ReadFrame()
	assert.ErrorIs(t, err, ErrNoFrame, "no loop: playback ends")
	assert.Equal(t, 2, cam.Reads())
}

func TestMockCamera_Loop(t *testing.T) {
	frames := BlankFrames(1, 64, 48)
	defer closeAll(frames)

	cam := NewMockCamera(frames, true)
	require.NoError(t, cam.Open())
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		require.NoError(t, err, "iteration %d", i)
		f.Close()
	}
}

func TestMockCamera_NotOpen(t *testing.T) {
	cam := NewMockCamera(nil, true)
	_, err := cam.ReadFrame()
	assert.ErrorIs(t, err, ErrCameraNotOpen)

	require.NoError(t, cam.Open())
	_, err = cam.ReadFrame()
	assert.ErrorIs(t, err, ErrNoFrame, "empty loop has nothing to serve")
}

func TestMockCamera_SetFPS(t *testing.T) {
	cam := NewMockCamera(nil, false)
	assert.Equal(t, DefaultFPS, cam.FPS())
	cam.SetFPS(30)
	assert.Equal(t, 30, cam.FPS())
	cam.SetFPS(0)
	assert.Equal(t, 30, cam.FPS())
}
