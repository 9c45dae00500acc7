// ReelRank - Session-Scoped Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package logging

import (
	"sort"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillLogger adapts zerolog to watermill.LoggerAdapter so the feedback
// pipeline logs in the same format as the rest of the service.
type WatermillLogger struct {
	logger zerolog.Logger
	fields watermill.LogFields
}

var _ watermill.LoggerAdapter = (*WatermillLogger)(nil)

// NewWatermillLogger wraps logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWatermillLogger(logger zerolog.Logger) *WatermillLogger {
	return &WatermillLogger{logger: logger}
}

func (l *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.write(l.logger.Error().Err(err), msg, fields)
}

func (l *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	l.write(l.logger.Info(), msg, fields)
}

func (l *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.write(l.logger.Debug(), msg, fields)
}

func (l *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.write(l.logger.Trace(), msg, fields)
}

func (l *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{logger: l.logger, fields: l.fields.Add(fields)}
}

func (l *WatermillLogger) write(event *zerolog.Event, msg string, fields watermill.LogFields) {
	all := l.fields.Add(fields)
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		event = event.Interface(k, all[k])
	}
	event.Msg(msg)
}
