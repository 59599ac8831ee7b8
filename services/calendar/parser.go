package calendar

import (
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"villacal/config"
	"villacal/models"
	"villacal/utils"
)

// Supported ICS subset: VEVENT blocks with DTSTART/DTEND carrying an
// 8-digit YYYYMMDD value (an optional time component after the date is
// ignored; day granularity only) and an optional SUMMARY. Anything else —
// recurring events, timezone-qualified stamps, VALARM and friends — is
// skipped without failing the feed.
const (
	eventBoundary       = "BEGIN:VEVENT"
	defaultMinFeedBytes = 50
)

var (
	dtStartRe = regexp.MustCompile(`DTSTART[^:]*:(\d{8})`)
	dtEndRe   = regexp.MustCompile(`DTEND[^:]*:(\d{8})`)
	summaryRe = regexp.MustCompile(`SUMMARY[^:]*:([^\r\n]+)`)
)

// ParseFeed extracts busy intervals from raw ICS text, tagging each with
// sourceName. Malformed event blocks are skipped; a feed shorter than the
// configured minimum is treated as empty (the caller decides on fallback).
// Output order follows feed order; no sorting happens here.
func ParseFeed(raw string, sourceName string) []models.BusyInterval {
	logger := utils.GetLogger()

	minBytes := config.AppConfig.MinFeedBytes
	if minBytes <= 0 {
		minBytes = defaultMinFeedBytes
	}
	if len(raw) < minBytes {
		logger.Warn("calendar feed too short, treating as empty",
			zap.String("source", sourceName), zap.Int("bytes", len(raw)))
		return nil
	}

	blocks := strings.Split(raw, eventBoundary)
	if len(blocks) < 2 {
		logger.Warn("calendar feed contains no events", zap.String("source", sourceName))
		return nil
	}

	intervals := make([]models.BusyInterval, 0, len(blocks)-1)
	for _, block := range blocks[1:] {
		iv, ok := parseEventBlock(block, sourceName)
		if !ok {
			continue
		}
		intervals = append(intervals, iv)
	}

	logger.Debug("calendar feed parsed",
		zap.String("source", sourceName), zap.Int("intervals", len(intervals)))
	return intervals
}

// parseEventBlock reads one VEVENT body. The feed's DTEND is exclusive of
// the last occupied night, so the stored End is DTEND minus one day.
func parseEventBlock(block string, sourceName string) (models.BusyInterval, bool) {
	startTok := dtStartRe.FindStringSubmatch(block)
	endTok := dtEndRe.FindStringSubmatch(block)
	if startTok == nil || endTok == nil {
		return models.BusyInterval{}, false
	}

	start, err := parseDayToken(startTok[1])
	if err != nil {
		return models.BusyInterval{}, false
	}
	end, err := parseDayToken(endTok[1])
	if err != nil {
		return models.BusyInterval{}, false
	}
	end = end.AddDate(0, 0, -1)
	if end.Before(start) {
		return models.BusyInterval{}, false
	}

	label := "Not available"
	if m := summaryRe.FindStringSubmatch(block); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			label = s
		}
	}

	return models.BusyInterval{
		Start:  start,
		End:    end,
		Label:  label,
		Source: sourceName,
	}, true
}

func parseDayToken(tok string) (time.Time, error) {
	return time.ParseInLocation("20060102", tok, time.UTC)
}
