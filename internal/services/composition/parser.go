package composition

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"contractbot/internal/domain"
)

var (
	strictLine = regexp.MustCompile(`^\d+[\s\p{Z}]+.+?[\s\p{Z}]+[\d.,]+[\s\p{Z}]+[\d.,]+$`)
	multiSpace = regexp.MustCompile(`[\s\p{Z}]{2,}`)
	disallowed = regexp.MustCompile(`[^0-9A-Za-zА-Яа-яЁё\-_'"()\[\]{}.,:;!? ]+`)
)

// Source labels the channel a composition was read from.
type Source string

const (
	SourceHostClipboard   Source = "host_clipboard"
	SourceDeviceClipboard Source = "device_clipboard"
	SourceOCR             Source = "ocr"
)

// Parser turns composition text into contract items.
type Parser struct {
	log *zap.Logger
}

func NewParser(log *zap.Logger) *Parser {
	return &Parser{log: log.Named("composition")}
}

// ParseLines reads one item per line formatted as "index name quantity
// value". Lines that match the strict single-space layout are split on
// whitespace; others are split on runs of two or more spaces so names may
// contain single spaces. Unusable lines are dropped.
func (p *Parser) ParseLines(text string) []domain.ContractItem {
	var items []domain.ContractItem
	for _, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		var parts []string
		if strictLine.MatchString(line) {
			parts = strings.Fields(line)
		} else {
			for _, part := range multiSpace.Split(line, -1) {
				if part != "" {
					parts = append(parts, part)
				}
			}
		}
		if len(parts) < 4 {
			p.log.Debug("dropping short composition line", zap.String("line", line))
			continue
		}
		qty, errQ := parseNumber(parts[len(parts)-2])
		value, errV := parseNumber(parts[len(parts)-1])
		if errQ != nil || errV != nil {
			p.log.Debug("failed to parse numeric values in line", zap.String("line", line))
			continue
		}
		name := Sanitize(strings.Join(parts[1:len(parts)-2], " "))
		if name == "" {
			p.log.Debug("dropping line with empty item name", zap.String("line", line))
			continue
		}
		items = append(items, domain.ContractItem{Name: name, Quantity: qty, EstimatedValue: value})
	}
	return items
}

// ParseClipboards tries the host clipboard first, then the device one, and
// returns the first that yields at least one item.
func (p *Parser) ParseClipboards(deviceText, hostText string) ([]domain.ContractItem, Source) {
	candidates := []struct {
		src  Source
		text string
	}{
		{SourceHostClipboard, hostText},
		{SourceDeviceClipboard, deviceText},
	}
	for _, c := range candidates {
		if c.text == "" {
			continue
		}
		if items := p.ParseLines(c.text); len(items) > 0 {
			p.log.Info("parsed composition from clipboard", zap.String("source", string(c.src)), zap.Int("items", len(items)))
			return items, c.src
		}
		p.log.Debug("clipboard data not parseable", zap.String("source", string(c.src)))
	}
	return nil, ""
}

// ParseFromOCR returns nil for blank text or text without a single item.
func (p *Parser) ParseFromOCR(text string) []domain.ContractItem {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	items := p.ParseLines(text)
	if len(items) == 0 {
		return nil
	}
	p.log.Info("parsed composition from OCR fallback", zap.Int("items", len(items)))
	return items
}

// Sanitize replaces characters outside Latin and Cyrillic letters, digits and
// a small punctuation set with spaces, then collapses whitespace.
func Sanitize(name string) string {
	return strings.Join(strings.Fields(disallowed.ReplaceAllString(name, " ")), " ")
}

// ExtractNick returns the text before a "--->" marker, or the trimmed input.
func ExtractNick(raw string) string {
	if before, _, found := strings.Cut(raw, "--->"); found {
		return strings.TrimSpace(before)
	}
	return strings.TrimSpace(raw)
}

// ExtractSystem cuts the system name at the first dash when more than five
// characters precede it. Shorter prefixes are kept whole so names with an
// early dash survive.
func ExtractSystem(raw string) string {
	text := strings.TrimSpace(raw)
	pos := strings.Index(text, "-")
	if pos >= 0 && utf8.RuneCountInString(text[:pos]) > 5 {
		return strings.TrimSpace(text[:pos])
	}
	return text
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrSyntax
	}
	return f, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
}
