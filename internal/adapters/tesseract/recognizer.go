package tesseract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"contractbot/internal/domain"
	"contractbot/internal/recognition"
)

const (
	DefaultPSM = 6

	recognizeAttempts = 2
	recognizeBackoff  = 500 * time.Millisecond
)

// Runner executes the tesseract binary with stdin attached.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

type Options struct {
	Command     string
	Lang        string
	TrainingDir string
	// Scale upsamples crops before recognition when greater than 1.
	Scale   float64
	Regions recognition.Regions
	Runner  Runner
	Backoff time.Duration
}

// Recognizer reads text from named screen regions through the tesseract CLI
// and keeps the user-words bias file.
type Recognizer struct {
	cmd       string
	lang      string
	wordsPath string
	scale     float64
	regions   recognition.Regions
	run       Runner
	backoff   time.Duration
	log       *zap.Logger

	mu sync.Mutex // guards the user-words file
}

func New(opts Options, log *zap.Logger) (*Recognizer, error) {
	if opts.Command == "" {
		opts.Command = "tesseract"
	}
	if opts.Lang == "" {
		opts.Lang = "eng"
	}
	if opts.TrainingDir == "" {
		opts.TrainingDir = "training"
	}
	if opts.Runner == nil {
		opts.Runner = execRunner{}
	}
	if opts.Backoff <= 0 {
		opts.Backoff = recognizeBackoff
	}
	if err := os.MkdirAll(opts.TrainingDir, 0o755); err != nil {
		return nil, fmt.Errorf("create training dir: %w", err)
	}
	wordsPath := filepath.Join(opts.TrainingDir, opts.Lang+".user-words")
	f, err := os.OpenFile(wordsPath, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open user words: %w", err)
	}
	_ = f.Close()

	return &Recognizer{
		cmd:       opts.Command,
		lang:      opts.Lang,
		wordsPath: wordsPath,
		scale:     opts.Scale,
		regions:   opts.Regions,
		run:       opts.Runner,
		backoff:   opts.Backoff,
		log:       log.Named("ocr"),
	}, nil
}

// AssertReady checks that the tesseract binary can be found.
func (r *Recognizer) AssertReady() error {
	if _, err := exec.LookPath(r.cmd); err != nil {
		return fmt.Errorf("missing required binary %q in PATH: %w", r.cmd, err)
	}
	return nil
}

func (r *Recognizer) Box(region string) (domain.Box, bool) {
	b, ok := r.regions[region]
	return b, ok
}

// Crop cuts a configured region out of img. Unknown regions and boxes with
// no area yield false.
func (r *Recognizer) Crop(img image.Image, region string) (image.Image, bool) {
	box, ok := r.regions[region]
	if !ok {
		r.log.Warn("OCR region not configured", zap.String("region", region))
		return nil, false
	}
	out, ok := recognition.Crop(img, box)
	if !ok && img != nil {
		r.log.Warn("crop rejected box", zap.String("region", region), zap.Ints("box", box[:]),
			zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
	}
	return out, ok
}

// Recognize returns the trimmed text of a region. A region that is not
// configured or cannot be cropped reads as empty.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, region string, psm int) (string, error) {
	crop, ok := r.Crop(img, region)
	if !ok {
		return "", nil
	}
	if r.scale > 1 {
		crop = upscale(crop, r.scale)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return "", fmt.Errorf("encode crop %s: %w", region, err)
	}

	args := []string{"stdin", "stdout", "-l", r.lang, "--psm", strconv.Itoa(psm)}
	if r.hasWords() {
		args = append(args, "--user-words", r.wordsPath)
	}

	var out []byte
	b := retry.WithMaxRetries(recognizeAttempts-1, retry.NewConstant(r.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		res, err := r.run.Run(ctx, buf.Bytes(), r.cmd, args...)
		if err != nil {
			r.log.Warn("tesseract failed", zap.String("region", region), zap.Error(err))
			return retry.RetryableError(err)
		}
		out = res
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("recognize %s: %w", region, err)
	}
	text := strings.TrimSpace(string(out))
	r.log.Debug("OCR result", zap.String("region", region), zap.String("text", text))
	return text, nil
}

// HasText reports whether the region recognizes to any non-whitespace text.
func (r *Recognizer) HasText(ctx context.Context, img image.Image, region string) (bool, error) {
	text, err := r.Recognize(ctx, img, region, DefaultPSM)
	if err != nil {
		return false, err
	}
	return text != "", nil
}

// AddTrainingWords appends words not yet present in the user-words file.
// They take effect on the next Recognize call.
func (r *Recognizer) AddTrainingWords(words []string) error {
	var unique []string
	seen := map[string]struct{}{}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		unique = append(unique, w)
	}
	if len(unique) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := readWords(r.wordsPath)
	if err != nil {
		return err
	}
	var fresh []string
	for _, w := range unique {
		if _, ok := existing[w]; !ok {
			fresh = append(fresh, w)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	f, err := os.OpenFile(r.wordsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open user words: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, word := range fresh {
		w.WriteString(word)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("append user words: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close user words: %w", err)
	}
	r.log.Info("added OCR training words", zap.Int("count", len(fresh)))
	return nil
}

func (r *Recognizer) hasWords() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := os.Stat(r.wordsPath)
	return err == nil
}

func readWords(path string) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user words: %w", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out[line] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read user words: %w", err)
	}
	return out, nil
}

func upscale(src image.Image, factor float64) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(b.Dx())*factor), int(float64(b.Dy())*factor)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
