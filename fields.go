package sentryzapreporter

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Context returns a field that hands ctx to the reporter.
// A sentry hub stored in ctx receives the entry instead of the session hub.
// Other cores skip the field.
func Context(ctx context.Context) zap.Field {
	return zap.Field{Key: "context", Type: zapcore.SkipType, Interface: ctx}
}

type encodedFields struct {
	ctx    context.Context
	values map[string]interface{}
	errs   []error
}

func encodeFields(fields []zapcore.Field) encodedFields {
	var encoded encodedFields

	enc := zapcore.NewMapObjectEncoder()

	for _, f := range fields {
		switch f.Type {
		case zapcore.SkipType:
			if v, ok := f.Interface.(context.Context); ok && v != nil {
				encoded.ctx = v
			}

			continue
		case zapcore.ErrorType:
			if err, ok := f.Interface.(error); ok && err != nil {
				encoded.errs = append(encoded.errs, err)
			}
		}

		f.AddTo(enc)
	}

	encoded.values = enc.Fields

	return encoded
}

func dataFromValues(values map[string]interface{}) map[string]interface{} {
	data := make(map[string]interface{}, len(values))

	for k, v := range values {
		sink := &dataSink{}
		applyValue(v, sink)
		data[k] = sink.value
	}

	return data
}

func attributesFromValues(values map[string]interface{}) []attribute.Builder {
	attrs := make([]attribute.Builder, 0, len(values))

	for k, v := range values {
		attrs = append(attrs, attributeFromValue(k, v))
	}

	return attrs
}

func attributeFromValue(key string, value interface{}) attribute.Builder {
	sink := &attributeSink{key: key}
	applyValue(value, sink)

	return sink.result
}

func applyValueToLogEntry(entry sentry.LogEntry, key string, value interface{}) sentry.LogEntry {
	sink := &logEntrySink{key: key, entry: entry}
	applyValue(value, sink)

	return sink.entry
}

type valueSink interface {
	SetString(string)
	SetBool(bool)
	SetInt64(int64)
	SetFloat64(float64)
}

type dataSink struct {
	value interface{}
}

func (sink *dataSink) SetString(value string)   { sink.value = value }
func (sink *dataSink) SetBool(value bool)       { sink.value = value }
func (sink *dataSink) SetInt64(value int64)     { sink.value = value }
func (sink *dataSink) SetFloat64(value float64) { sink.value = value }

type attributeSink struct {
	key    string
	result attribute.Builder
}

func (sink *attributeSink) SetString(value string) { sink.result = attribute.String(sink.key, value) }
func (sink *attributeSink) SetBool(value bool)     { sink.result = attribute.Bool(sink.key, value) }
func (sink *attributeSink) SetInt64(value int64)   { sink.result = attribute.Int64(sink.key, value) }
func (sink *attributeSink) SetFloat64(value float64) {
	sink.result = attribute.Float64(sink.key, value)
}

type logEntrySink struct {
	entry sentry.LogEntry
	key   string
}

func (sink *logEntrySink) SetString(value string) { sink.entry = sink.entry.String(sink.key, value) }
func (sink *logEntrySink) SetBool(value bool)     { sink.entry = sink.entry.Bool(sink.key, value) }
func (sink *logEntrySink) SetInt64(value int64)   { sink.entry = sink.entry.Int64(sink.key, value) }
func (sink *logEntrySink) SetFloat64(value float64) {
	sink.entry = sink.entry.Float64(sink.key, value)
}

func applyValue(value interface{}, sink valueSink) {
	if v, ok := timeStringValue(value); ok {
		sink.SetString(v)
		return
	}

	if v, ok := stringValue(value); ok {
		sink.SetString(v)
		return
	}

	if v, ok := value.(bool); ok {
		sink.SetBool(v)
		return
	}

	if v, ok := signedInt64Value(value); ok {
		sink.SetInt64(v)
		return
	}

	if v, ok := unsignedInt64Value(value); ok {
		if v > math.MaxInt64 {
			sink.SetString(fmt.Sprint(value))
			return
		}

		sink.SetInt64(int64(v))

		return
	}

	if v, ok := float64Value(value); ok {
		sink.SetFloat64(v)
		return
	}

	sink.SetString(fmt.Sprint(value))
}

func timeStringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	case time.Duration:
		return v.String(), true
	default:
		return "", false
	}
}

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case error:
		return v.Error(), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}

func signedInt64Value(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func unsignedInt64Value(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	case uintptr:
		return uint64(v), true
	default:
		return 0, false
	}
}

func float64Value(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
