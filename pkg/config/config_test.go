// pkg/config/config_test.go

package config

import (
	"testing"

	"github.com/drawthingsai/dts-util/pkg/dts_err"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultAddress, cfg.Address)
	assert.Equal(t, DefaultGPU, cfg.GPU)
	assert.Equal(t, DefaultName(), cfg.Name)
	assert.False(t, cfg.NoTLS)
	assert.Empty(t, cfg.Join)
}

func TestValidatePortBounds(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{name: "default port", port: DefaultPort, wantErr: false},
		{name: "min valid port", port: 1, wantErr: false},
		{name: "max valid port", port: 65535, wantErr: false},
		{name: "zero port", port: 0, wantErr: true},
		{name: "negative port", port: -1, wantErr: true},
		{name: "port too large", port: 65536, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ServerConfig{
				Name:    "test",
				Port:    tt.port,
				Address: DefaultAddress,
			}
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, dts_err.KindValidation, dts_err.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRejectsBadJoin(t *testing.T) {
	cfg := &ServerConfig{
		Name:    "test",
		Port:    DefaultPort,
		Address: DefaultAddress,
		Join:    `{"host":"","port":7859}`,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, dts_err.KindValidation, dts_err.KindOf(err))
}
