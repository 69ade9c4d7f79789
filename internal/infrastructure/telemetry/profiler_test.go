package telemetry

import (
	"runtime"
	"sync"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	cfg := ProfilerConfig{
		Enabled:         false,
		ServerAddress:   "http://localhost:4040",
		ApplicationName: "receivables-test",
	}

	profiler, err := NewProfiler(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, profiler.IsEnabled())

	got := profiler.GetConfig()
	assert.Equal(t, "receivables-test", got.ApplicationName)
	assert.Equal(t, DefaultProfileTypes(), got.ProfileTypes)
	assert.NoError(t, profiler.Stop())
}

func TestNewProfiler_EnabledRequiresAddressAndName(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProfilerConfig
		wantErr string
	}{
		{
			name:    "missing server address",
			cfg:     ProfilerConfig{Enabled: true, ApplicationName: "receivables"},
			wantErr: "server address",
		},
		{
			name:    "missing application name",
			cfg:     ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"},
			wantErr: "application name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiler, err := NewProfiler(tt.cfg, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.Nil(t, profiler)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewProfiler_KeepsExplicitProfileTypes(t *testing.T) {
	profiler, err := NewProfiler(ProfilerConfig{
		ProfileTypes: []pyroscope.ProfileType{pyroscope.ProfileCPU},
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileCPU}, profiler.GetConfig().ProfileTypes)
}

func TestProfiler_GetConfigReturnsACopy(t *testing.T) {
	profiler, err := NewProfiler(ProfilerConfig{ApplicationName: "receivables"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	cfg := profiler.GetConfig()
	cfg.ApplicationName = "changed"
	cfg.ProfileTypes[0] = pyroscope.ProfileBlockCount

	again := profiler.GetConfig()
	assert.Equal(t, "receivables", again.ApplicationName)
	assert.Equal(t, pyroscope.ProfileCPU, again.ProfileTypes[0])
}

func TestProfiler_StopConcurrent(t *testing.T) {
	profiler, err := NewProfiler(ProfilerConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, profiler.Stop())
		}()
	}
	wg.Wait()
}

func TestApplyRuntimeRates_MutexFraction(t *testing.T) {
	previous := runtime.SetMutexProfileFraction(-1)
	t.Cleanup(func() { runtime.SetMutexProfileFraction(previous) })

	applyRuntimeRates(ProfilerConfig{
		ProfileTypes:         []pyroscope.ProfileType{pyroscope.ProfileMutexCount},
		MutexProfileFraction: 10,
	}, zaptest.NewLogger(t))
	assert.Equal(t, 10, runtime.SetMutexProfileFraction(-1))

	applyRuntimeRates(ProfilerConfig{
		ProfileTypes: []pyroscope.ProfileType{pyroscope.ProfileMutexDuration},
	}, zaptest.NewLogger(t))
	assert.Equal(t, 5, runtime.SetMutexProfileFraction(-1))
}

func TestApplyRuntimeRates_SkipsMutexWhenNotProfiled(t *testing.T) {
	previous := runtime.SetMutexProfileFraction(-1)
	t.Cleanup(func() { runtime.SetMutexProfileFraction(previous) })
	runtime.SetMutexProfileFraction(0)

	applyRuntimeRates(ProfilerConfig{
		ProfileTypes:         []pyroscope.ProfileType{pyroscope.ProfileCPU},
		MutexProfileFraction: 10,
	}, zaptest.NewLogger(t))
	assert.Equal(t, 0, runtime.SetMutexProfileFraction(-1))
}
