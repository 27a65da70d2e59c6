package adb

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	out   map[string][]byte
	err   map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	key := strings.Join(args, " ")
	for k, e := range f.err {
		if strings.HasSuffix(key, k) {
			return nil, e
		}
	}
	for k, o := range f.out {
		if strings.HasSuffix(key, k) {
			return o, nil
		}
	}
	return nil, nil
}

func newClient(serial string, r *fakeRunner) *Client {
	return New("adb", serial, zap.NewNop(), WithRunner(r))
}

const devicesOutput = `List of devices attached
emulator-5554          device product:sdk_gphone64 model:Pixel_6 transport_id:1
R58M1234ABC            unauthorized usb:1-1 transport_id:2
192.168.1.40:5555      device product:beyond1 model:SM_G973F transport_id:3

`

func TestParseDevices(t *testing.T) {
	devices := parseDevices([]byte(devicesOutput))
	require.Len(t, devices, 2)
	assert.Equal(t, "emulator-5554", devices[0].Serial)
	assert.Contains(t, devices[0].Description, "model:Pixel_6")
	assert.Equal(t, "192.168.1.40:5555", devices[1].Serial)

	assert.Empty(t, parseDevices([]byte("List of devices attached\n\n")))
}

func TestParseDevicesTabSeparated(t *testing.T) {
	out := "List of devices attached\nemulator-5554\tdevice\nR58M1234ABC\toffline\nbare-serial\n"
	devices := parseDevices([]byte(out))
	require.Len(t, devices, 1)
	assert.Equal(t, "emulator-5554", devices[0].Serial)
	assert.Equal(t, "device", devices[0].Description)
}

func TestCommandsCarrySerial(t *testing.T) {
	r := &fakeRunner{}
	c := newClient("emulator-5554", r)
	ctx := context.Background()

	require.NoError(t, c.Tap(ctx, 10, 20))
	require.NoError(t, c.Swipe(ctx, 1, 2, 3, 4, 250*time.Millisecond))
	require.NoError(t, c.Shell(ctx, "input", "keyevent", "4"))

	require.Len(t, r.calls, 3)
	assert.Equal(t, []string{"-s", "emulator-5554", "shell", "input", "tap", "10", "20"}, r.calls[0].args)
	assert.Equal(t, []string{"-s", "emulator-5554", "shell", "input", "swipe", "1", "2", "3", "4", "250"}, r.calls[1].args)
	assert.Equal(t, []string{"-s", "emulator-5554", "shell", "input", "keyevent", "4"}, r.calls[2].args)
}

func TestAutoSerialOmitsFlag(t *testing.T) {
	r := &fakeRunner{}
	require.NoError(t, newClient("auto", r).Tap(context.Background(), 1, 1))
	assert.Equal(t, []string{"shell", "input", "tap", "1", "1"}, r.calls[0].args)
}

func TestScreencapDecodes(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 6))
	src.Set(2, 3, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	r := &fakeRunner{out: map[string][]byte{"exec-out screencap -p": buf.Bytes()}}
	img, err := newClient("auto", r).Screencap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
}

func TestScreencapCorruptImage(t *testing.T) {
	r := &fakeRunner{out: map[string][]byte{"exec-out screencap -p": []byte("not a png")}}
	_, err := newClient("auto", r).Screencap(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode screenshot")
}

func TestClipboard(t *testing.T) {
	r := &fakeRunner{out: map[string][]byte{"cmd clipboard get": []byte("1 Ore 2 30\n")}}
	text, err := newClient("auto", r).Clipboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1 Ore 2 30", text)

	r = &fakeRunner{err: map[string]error{"cmd clipboard get": errors.New("unsupported")}}
	text, err = newClient("auto", r).Clipboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestSelectDevice(t *testing.T) {
	ctx := context.Background()

	serial, err := SelectDevice(ctx, newClient("", &fakeRunner{}), "pinned-1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "pinned-1", serial)

	one := &fakeRunner{out: map[string][]byte{"devices -l": []byte("List of devices attached\nabc device model:X\n")}}
	serial, err = SelectDevice(ctx, newClient("auto", one), "auto", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", serial)

	none := &fakeRunner{out: map[string][]byte{"devices -l": []byte("List of devices attached\n")}}
	_, err = SelectDevice(ctx, newClient("auto", none), "auto", nil, nil)
	assert.ErrorIs(t, err, ErrNoDevices)

	many := &fakeRunner{out: map[string][]byte{"devices -l": []byte(devicesOutput)}}
	var out bytes.Buffer
	serial, err = SelectDevice(ctx, newClient("auto", many), "auto", strings.NewReader("9\nx\n2\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.40:5555", serial)
	assert.Contains(t, out.String(), "1. emulator-5554")
}
