//go:build linux

package capture

import "testing"

func TestLoadEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		validate func(*testing.T, EnvConfig)
	}{
		{
			name: "defaults",
			validate: func(t *testing.T, c EnvConfig) {
				if c.NRecords != defaultNRecords {
					t.Errorf("NRecords = %d, want %d", c.NRecords, defaultNRecords)
				}
				if c.Verbose || c.EnforceErrChk || c.CaptureSIGTERM {
					t.Errorf("expected all flags off by default, got %+v", c)
				}
			},
		},
		{
			name: "custom record count",
			env:  map[string]string{"TRACE_N_RECORDS": "1024"},
			validate: func(t *testing.T, c EnvConfig) {
				if c.NRecords != 1024 {
					t.Errorf("NRecords = %d, want 1024", c.NRecords)
				}
			},
		},
		{
			name: "invalid record count falls back to default",
			env:  map[string]string{"TRACE_N_RECORDS": "not-a-number"},
			validate: func(t *testing.T, c EnvConfig) {
				if c.NRecords != defaultNRecords {
					t.Errorf("NRecords = %d, want default %d", c.NRecords, defaultNRecords)
				}
			},
		},
		{
			name: "zero record count falls back to default",
			env:  map[string]string{"TRACE_N_RECORDS": "0"},
			validate: func(t *testing.T, c EnvConfig) {
				if c.NRecords != defaultNRecords {
					t.Errorf("NRecords = %d, want default %d", c.NRecords, defaultNRecords)
				}
			},
		},
		{
			name: "presence-only flags",
			env:  map[string]string{"TRACE_VERBOSE": "", "ENFORCE_ERR_CHK": "", "CAPTURE_SIGTERM": ""},
			validate: func(t *testing.T, c EnvConfig) {
				if !c.Verbose || !c.EnforceErrChk || !c.CaptureSIGTERM {
					t.Errorf("expected all flags on when set, got %+v", c)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			tt.validate(t, LoadEnvConfig())
		})
	}
}
