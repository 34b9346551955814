// package formatter exports subscription lists to JSON, CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/mysubs/internal/models"
	"github.com/desertthunder/mysubs/internal/shared"
)

// Format names an export format.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
)

// Formats lists the accepted export formats.
var Formats = []Format{JSON, CSV, Markdown, Text}

// ParseFormat maps a user supplied name to a [Format]. "md" and "text" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension is the file extension used for f.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case CSV:
		return ".csv"
	case Text:
		return ".txt"
	default:
		return ".json"
	}
}

// Export renders page in format f.
func Export(page *models.SubscriptionPage, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return ExportToCSV(page.Items)
	case Markdown:
		return ExportToMarkdown(page.Items)
	case Text:
		return ExportToText(page.Items)
	default:
		return ExportToJSON(page)
	}
}

// ExportToJSON renders the whole page, cursor and page info included.
func ExportToJSON(page *models.SubscriptionPage) ([]byte, error) {
	return shared.MarshalJSON(page, true)
}

// ExportToCSV converts items to CSV with columns: ID, ChannelID, Title, PublishedAt, Thumbnail,
// Subscribers, Videos, Views. Counters are blank when statistics were not fetched.
func ExportToCSV(items []models.SubscriptionItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "ChannelID", "Title", "PublishedAt", "Thumbnail", "Subscribers", "Videos", "Views"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		thumb, _ := models.PickThumbnail(item, "default", "medium", "high")
		record := []string{
			item.ID,
			item.ChannelID,
			item.Title,
			item.PublishedAt,
			thumb.URL,
			"", "", "",
		}
		if s := item.Statistics; s != nil {
			if !s.HiddenSubscriberCount {
				record[5] = strconv.Itoa(s.SubscriberCount)
			}
			record[6] = strconv.Itoa(s.VideoCount)
			record[7] = strconv.Itoa(s.ViewCount)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown converts items to a Markdown document with one numbered entry per channel.
func ExportToMarkdown(items []models.SubscriptionItem) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Subscriptions\n\n")
	buf.WriteString(fmt.Sprintf("**Channels**: %d\n\n", len(items)))

	for i, item := range items {
		link := channelURL(item)
		buf.WriteString(fmt.Sprintf("%d. [%s](%s)", i+1, item.Title, link))
		if s := item.Statistics; s != nil {
			buf.WriteString(fmt.Sprintf(" (%s subscribers, %d videos)", subscribers(s), s.VideoCount))
		}
		buf.WriteString("\n")
		if desc := firstLine(item.Description); desc != "" {
			buf.WriteString(fmt.Sprintf("   > %s\n", desc))
		}
	}
	return buf.Bytes(), nil
}

// ExportToText converts items to plain text, one title per line.
func ExportToText(items []models.SubscriptionItem) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Subscriptions: %d\n\n", len(items)))
	for i, item := range items {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, item.Title, item.TargetID()))
	}
	return buf.Bytes(), nil
}

// WriteExport renders page in format f and writes it to path, creating parent directories.
//
// An empty path defaults to subscriptions{ext} in the working directory.
func WriteExport(page *models.SubscriptionPage, f Format, path string) (string, error) {
	if path == "" {
		path = "subscriptions" + f.Extension()
	}

	data, err := Export(page, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

func channelURL(item models.SubscriptionItem) string {
	return "https://www.youtube.com/channel/" + item.TargetID()
}

func subscribers(s *models.Statistics) string {
	if s.HiddenSubscriberCount {
		return "hidden"
	}
	return strconv.Itoa(s.SubscriberCount)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
