package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"fifoq/internal/queue"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// statsLines renders the stats summary: totals first, then one line per
// status with a non-zero count or a conventional name.
func statsLines(stats queueStats, colorize bool) []string {
	lines := renderSectionHeader("Queue", colorize)

	if stats.Total == 0 {
		lines = append(lines, renderStatusLine("Items", statusOK, "empty", colorize))
		return lines
	}
	lines = append(lines, renderStatusLine("Items", statusInfo, strconv.Itoa(stats.Total), colorize))
	lines = append(lines, renderStatusLine("Head", statusInfo, "["+stats.Head+"]", colorize))
	if stats.Unlabelled > 0 {
		lines = append(lines, renderStatusLine("Unlabelled", statusWarn, strconv.Itoa(stats.Unlabelled), colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Status", colorize)...)
	for _, status := range statusOrder(stats.ByStatus) {
		count := stats.ByStatus[status]
		lines = append(lines, renderStatusLine(formatStatusLabel(status), statusCountKind(status, count), strconv.Itoa(count), colorize))
	}

	retryKind := statusOK
	if stats.OverRetryLimit > 0 {
		retryKind = statusWarn
	}
	message := fmt.Sprintf("%d over limit %d", stats.OverRetryLimit, stats.RetryLimit)
	lines = append(lines, renderStatusLine("Retries", retryKind, message, colorize))
	return lines
}

func statusCountKind(status string, count int) statusKind {
	if count == 0 {
		return statusInfo
	}
	switch queue.Status(status) {
	case queue.StatusFailed:
		return statusError
	case queue.StatusCompleted:
		return statusOK
	default:
		return statusInfo
	}
}
