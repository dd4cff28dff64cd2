package utils

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"imagesearch/histogram"
	"imagesearch/types"
)

// MaxBarWidth is the length of the bar drawn for the fullest bin.
const MaxBarWidth = 40

const (
	barSymbol   = "█"
	alphaSymbol = "▒"
)

var channelStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
}

// RenderDiagram draws one bar chart per channel. Images with three or four
// channels get red, green and blue bars for their colour channels and a
// shaded bar for alpha; every other layout uses plain bars.
func RenderDiagram(histograms []types.Histogram) (string, error) {
	if len(histograms) == 0 {
		return "", types.ErrInvalidChannelCount
	}

	bounds, err := histogram.Bounds(len(histograms[0].Bins))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Division of the values in %d bins.\n", len(bounds))

	for channel, h := range histograms {
		if len(h.Bins) != len(bounds) {
			return "", fmt.Errorf("%w: channel %d has %d bins, want %d",
				types.ErrHistogramLengthMismatch, channel, len(h.Bins), len(bounds))
		}
		fmt.Fprintf(&sb, "Histogram of color channel %d:\n", channel)
		writeChannel(&sb, h, bounds, bar(len(histograms), channel))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func bar(channels, channel int) func(n int) string {
	symbol := barSymbol
	if channels == 4 && channel == 3 {
		symbol = alphaSymbol
	}
	if (channels == 3 || channels == 4) && channel < 3 {
		style := channelStyles[channel]
		return func(n int) string {
			if n == 0 {
				return ""
			}
			return style.Render(strings.Repeat(symbol, n))
		}
	}
	return func(n int) string { return strings.Repeat(symbol, n) }
}

func writeChannel(sb *strings.Builder, h types.Histogram, bounds []histogram.Bound, draw func(int) string) {
	var maxCount uint32
	for _, count := range h.Bins {
		maxCount = max(maxCount, count)
	}

	sb.WriteString("Bins   | Pixel Count\n")
	fmt.Fprintf(sb, "%s|%s\n", strings.Repeat("=", 7), strings.Repeat("=", 50))
	for i, count := range h.Bins {
		length := 0
		if maxCount > 0 {
			length = int(float64(count) / float64(maxCount) * MaxBarWidth)
		}
		fmt.Fprintf(sb, "%-7s|%s %d\n", bounds[i].String(), draw(length), count)
	}
}
