package log

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	linregErrors "github.com/YuminosukeSato/linreg/pkg/errors"
)

// TestLoggerInterface tests the TestLogger implementation
func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", ErrorCodeKey, ErrorNumerical)
	testLogger.Error("error message", ErrAttrKey, fmt.Errorf("test error"))

	require.NotEmpty(t, buffer.String())

	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		assert.True(t, testLogger.ContainsMessage(msg), "missing %q", msg)
	}
	assert.True(t, testLogger.ContainsField("key1", "value1"))
	assert.True(t, testLogger.ContainsField("number", 42.0)) // JSON numbers decode as float64
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "test error"))
}

// TestLoggerWith tests the With method for context-aware logging
func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "LinearRegressor",
		ComponentKey, "linear",
	)
	contextLogger.Info("contextual message", OperationKey, OperationFit)

	assert.True(t, testLogger.ContainsField(ModelNameKey, "LinearRegressor"))
	assert.True(t, testLogger.ContainsField(ComponentKey, "linear"))
	assert.True(t, testLogger.ContainsField(OperationKey, OperationFit))
}

// TestLoggerEnabled tests level filtering
func TestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	assert.True(t, testLogger.Enabled(ctx, LevelInfo))
	assert.True(t, testLogger.Enabled(ctx, LevelError))
	assert.False(t, testLogger.Enabled(ctx, LevelDebug))

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")

	assert.False(t, testLogger.ContainsMessage("this should not appear"))
	assert.True(t, testLogger.ContainsMessage("this should appear"))
}

func TestTestLoggerProvider(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelDebug)

	provider.GetLogger().Info("provider test message")
	provider.GetLoggerWithName("preprocessing").Info("named logger message")

	out := buffer.String()
	assert.Contains(t, out, "provider test message")
	assert.Contains(t, out, "named logger message")
	assert.True(t, provider.Logger().ContainsField(ComponentKey, "preprocessing"))

	provider.SetLevel(LevelError)
	provider.GetLogger().Info("suppressed")
	assert.False(t, provider.Logger().ContainsMessage("suppressed"))
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.With(ModelNameKey, "LinearRegressor").Info("Training completed",
		OperationKey, OperationFit,
		SamplesKey, 11,
		LossKey, 0.25,
	)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Training completed", entry["message"])
	assert.Equal(t, "LinearRegressor", entry[ModelNameKey])
	assert.Equal(t, 11.0, entry[SamplesKey])
	assert.Equal(t, 0.25, entry[LossKey])
}

func TestZerologLogger_SharedLevel(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelWarn)
	child := p.GetLoggerWithName("linear")

	child.Info("before")
	p.SetLevel(LevelDebug)
	child.Debug("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
	assert.Contains(t, buf.String(), `"ml.component":"linear"`)
}

func TestZerologLogger_StructuredErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	err := linregErrors.NewValidationError("method", "unknown fitting method", "bogus")
	var vErr *linregErrors.ValidationError
	require.True(t, linregErrors.As(err, &vErr))

	logger.Error("Fit failed", ErrAttrKey, vErr)
	assert.Contains(t, buf.String(), `"param_name":"method"`)
	assert.Contains(t, buf.String(), `"type":"ValidationError"`)
}

func TestWarningsRouteThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetProvider(NewZerologProvider(&buf, LevelInfo))
	defer SetProvider(NewZerologProvider(&bytes.Buffer{}, LevelInfo))

	linregErrors.Warn(linregErrors.NewUndefinedMetricWarning("R2", "zero variance in y_true", 0))

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"metric":"R2"`)
}

func TestSlogLoggerStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(NewCloudLoggingHandler(&buf, LevelInfo))

	logger.Error("Predict failed", ErrAttrKey, linregErrors.NewNotFittedError("LinearRegressor", "Predict"))
	logger.Debug("hidden")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "ERROR", entry["severity"])
	assert.Equal(t, "Predict failed", entry["message"])
	assert.NotEmpty(t, entry[StacktraceAttrKey])
	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
}

func TestToLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestConcurrentLogging tests thread safety of the test logger
func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	numGoroutines := 4
	messagesPerGoroutine := 5
	done := make(chan bool, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer func() { done <- true }()
			for j := 0; j < messagesPerGoroutine; j++ {
				testLogger.Info(fmt.Sprintf("goroutine %d message %d", id, j), "goroutine_id", id)
			}
		}(i)
	}
	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, numGoroutines*messagesPerGoroutine)
}

// BenchmarkLogging benchmarks logging performance
func BenchmarkLogging(b *testing.B) {
	logger := NewZerologLogger(&bytes.Buffer{}, LevelInfo)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message",
			EpochKey, i,
			OperationKey, OperationPredict,
			SamplesKey, 1000,
		)
	}
}

func TestSetOutputKeepsLevel(t *testing.T) {
	var first, second bytes.Buffer
	SetProvider(NewZerologProvider(&first, LevelWarn))
	defer SetProvider(NewZerologProvider(&bytes.Buffer{}, LevelInfo))

	SetOutput(&second)
	GetLoggerWithName("linear").Info("dropped")
	GetLoggerWithName("linear").Warn("kept")

	assert.Empty(t, first.String())
	assert.NotContains(t, second.String(), "dropped")
	assert.Contains(t, second.String(), `"ml.component":"linear"`)
}
