package wire_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atsika/rfcgrid"
	"github.com/atsika/rfcgrid/wire"
)

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	ok := true
	original := rfcgrid.Frame{
		UID:     42,
		Success: &ok,
		Value:   map[string]any{"greeting": "hi"},
	}

	b, err := wire.EncodeFrame(original)
	require.NoError(t, err)

	decoded, err := wire.DecodeFrame(b)
	require.NoError(t, err)

	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Fatalf("frame round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeDecodeRequestFrameRoundTrip(t *testing.T) {
	// Parameters use only shapes that survive a JSON interface{} round
	// trip unchanged (float64, string, bool) — an int literal would
	// decode back as float64 and make the diff below spurious.
	original := rfcgrid.RequestFrame(7, "a.b.c", []rfcgrid.Value{1.0, "two", true})

	b, err := wire.EncodeFrame(original)
	require.NoError(t, err)

	decoded, err := wire.DecodeFrame(b)
	require.NoError(t, err)

	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Fatalf("request frame round trip mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, decoded.IsRequest())
}

func TestDecodeControlRecognizesKnownLiterals(t *testing.T) {
	for _, lit := range []string{wire.ControlAccept, wire.ControlReject, wire.ControlClose} {
		got, err := wire.DecodeControl(wire.EncodeControl(lit))
		require.NoError(t, err)
		assert.Equal(t, lit, got)
	}
}

func TestDecodeControlRejectsArbitraryPayload(t *testing.T) {
	_, err := wire.DecodeControl([]byte(`{"uid":1}`))
	assert.ErrorIs(t, err, wire.ErrNotControl)
}

func TestDecodeDisambiguatesControlFromFrame(t *testing.T) {
	control, _, err := wire.Decode(wire.EncodeControl(wire.ControlClose))
	require.NoError(t, err)
	assert.Equal(t, wire.ControlClose, control)

	req := rfcgrid.RequestFrame(1, "echo", []rfcgrid.Value{"hi"})
	payload, err := wire.EncodeFrame(req)
	require.NoError(t, err)

	control, frame, err := wire.Decode(payload)
	require.NoError(t, err)
	assert.Empty(t, control)
	assert.Equal(t, "echo", frame.Listener)
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	_, _, err := wire.Decode([]byte(`not json and not a control literal`))
	assert.ErrorIs(t, err, wire.ErrMalformedFrame)
}

func TestWriteReadMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"uid":9,"listener":"echo"}`)

	require.NoError(t, wire.WriteMessage(&buf, payload))

	got, err := wire.ReadMessage(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestWriteReadMessageMultipleFramesInSequence(t *testing.T) {
	var buf bytes.Buffer
	first := wire.EncodeControl(wire.ControlAccept)
	second := []byte(`{"uid":1}`)

	require.NoError(t, wire.WriteMessage(&buf, first))
	require.NoError(t, wire.WriteMessage(&buf, second))

	r := bufio.NewReader(&buf)
	gotFirst, err := wire.ReadMessage(r)
	require.NoError(t, err)
	assert.Equal(t, first, gotFirst)

	gotSecond, err := wire.ReadMessage(r)
	require.NoError(t, err)
	assert.Equal(t, second, gotSecond)
}
