package adb

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SelectDevice resolves the serial to bind. A pinned serial is returned as
// is. With "auto" a single attached device is chosen directly; several are
// offered as a numbered prompt on in/out.
func SelectDevice(ctx context.Context, c *Client, pinned string, in io.Reader, out io.Writer) (string, error) {
	if pinned != "" && pinned != "auto" {
		return pinned, nil
	}
	devices, err := c.ListDevices(ctx)
	if err != nil {
		return "", err
	}
	switch len(devices) {
	case 0:
		return "", ErrNoDevices
	case 1:
		return devices[0].Serial, nil
	}

	fmt.Fprintln(out, "Available ADB devices:")
	for i, d := range devices {
		fmt.Fprintf(out, "  %d. %s %s\n", i+1, d.Serial, d.Description)
	}
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Select device number: ")
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		idx, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err == nil && idx >= 1 && idx <= len(devices) {
			return devices[idx-1].Serial, nil
		}
	}
}
