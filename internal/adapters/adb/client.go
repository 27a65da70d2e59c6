package adb

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os/exec"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
)

var ErrNoDevices = errors.New("no adb devices detected")

// Runner executes one external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
		}
		return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
	}
	return stdout.Bytes(), nil
}

// Device is one entry of `adb devices -l`.
type Device struct {
	Serial      string
	Description string
}

// Client drives one device through the adb binary. An empty or "auto" serial
// lets adb pick the only attached device.
type Client struct {
	path   string
	serial string
	run    Runner
	log    *zap.Logger
}

type Option func(*Client)

func WithRunner(r Runner) Option { return func(c *Client) { c.run = r } }

func New(path, serial string, log *zap.Logger, opts ...Option) *Client {
	if path == "" {
		path = "adb"
	}
	c := &Client{path: path, serial: serial, run: execRunner{}, log: log.Named("adb")}
	for _, o := range opts {
		o(c)
	}
	return c
}

// AssertReady checks that the adb binary can be found.
func (c *Client) AssertReady() error {
	if _, err := exec.LookPath(c.path); err != nil {
		return fmt.Errorf("missing required binary %q in PATH: %w", c.path, err)
	}
	return nil
}

func (c *Client) args(rest ...string) []string {
	if c.serial == "" || c.serial == "auto" {
		return rest
	}
	return append([]string{"-s", c.serial}, rest...)
}

func (c *Client) exec(ctx context.Context, rest ...string) ([]byte, error) {
	args := c.args(rest...)
	c.log.Debug("running adb", zap.Strings("args", args))
	return c.run.Run(ctx, c.path, args...)
}

// ListDevices returns attached devices in the "device" state.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	out, err := c.run.Run(ctx, c.path, "devices", "-l")
	if err != nil {
		return nil, err
	}
	return parseDevices(out), nil
}

func parseDevices(out []byte) []Device {
	var devices []Device
	sc := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if first {
			first = false
			continue
		}
		if line == "" {
			continue
		}
		cut := strings.IndexFunc(line, unicode.IsSpace)
		if cut < 0 {
			continue
		}
		serial, desc := line[:cut], strings.TrimSpace(line[cut:])
		if !strings.Contains(desc, "device") {
			continue
		}
		devices = append(devices, Device{Serial: serial, Description: desc})
	}
	return devices
}

func (c *Client) Tap(ctx context.Context, x, y int) error {
	_, err := c.exec(ctx, "shell", "input", "tap", strconv.Itoa(x), strconv.Itoa(y))
	return err
}

func (c *Client) Swipe(ctx context.Context, x1, y1, x2, y2 int, d time.Duration) error {
	_, err := c.exec(ctx, "shell", "input", "swipe",
		strconv.Itoa(x1), strconv.Itoa(y1), strconv.Itoa(x2), strconv.Itoa(y2),
		strconv.FormatInt(d.Milliseconds(), 10))
	return err
}

func (c *Client) Shell(ctx context.Context, args ...string) error {
	_, err := c.exec(ctx, append([]string{"shell"}, args...)...)
	return err
}

// Screencap grabs a PNG over exec-out and decodes it.
func (c *Client) Screencap(ctx context.Context) (image.Image, error) {
	raw, err := c.exec(ctx, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot (%d bytes): %w", len(raw), err)
	}
	return img, nil
}

// Clipboard returns the device clipboard text. Devices without clipboard
// support read as empty.
func (c *Client) Clipboard(ctx context.Context) (string, error) {
	out, err := c.exec(ctx, "shell", "cmd", "clipboard", "get")
	if err != nil {
		c.log.Debug("device clipboard unavailable", zap.Error(err))
		return "", nil
	}
	return strings.TrimSpace(string(out)), nil
}
