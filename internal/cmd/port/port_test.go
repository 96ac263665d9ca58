package port

import (
	"context"
	"testing"

	"github.com/google/shlex"
	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/compose/composetest"
	"github.com/schmitthub/composefixture/internal/config"
	"github.com/schmitthub/composefixture/internal/config/configtest"
	"github.com/schmitthub/composefixture/internal/iostreams/iostreamstest"
	"github.com/schmitthub/composefixture/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCmdPort(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantOpts PortOptions
		wantErr  bool
	}{
		{
			name:     "tcp port",
			input:    "httpbin 80",
			wantOpts: PortOptions{Service: "httpbin", Port: 80, Proto: "tcp"},
		},
		{
			name:     "udp port",
			input:    "dns 53/udp",
			wantOpts: PortOptions{Service: "dns", Port: 53, Proto: "udp"},
		},
		{
			name:    "missing port",
			input:   "httpbin",
			wantErr: true,
		},
		{
			name:    "bad port",
			input:   "httpbin http",
			wantErr: true,
		},
		{
			name:    "too many arguments",
			input:   "httpbin 80 81",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &cmdutil.Factory{}

			var gotOpts *PortOptions
			cmd := NewCmdPort(f, func(_ context.Context, opts *PortOptions) error {
				gotOpts = opts
				return nil
			})

			argv, err := shlex.Split(tt.input)
			require.NoError(t, err)
			cmd.SetArgs(argv)
			tio := iostreamstest.New()
			cmd.SetOut(tio.OutBuf)
			cmd.SetErr(tio.ErrBuf)

			_, err = cmd.ExecuteC()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, gotOpts)
			assert.Equal(t, tt.wantOpts.Service, gotOpts.Service)
			assert.Equal(t, tt.wantOpts.Port, gotOpts.Port)
			assert.Equal(t, tt.wantOpts.Proto, gotOpts.Proto)
		})
	}
}

func TestPortRun(t *testing.T) {
	tio := iostreamstest.New()
	exec := composetest.NewFakeExecutor("ci-1").
		On("port httpbin 80", composetest.Response{Output: "0.0.0.0:49153\n"})
	cfg := configtest.NewConfigBuilder().WithProjectName("ci-1").Build()

	opts := &PortOptions{
		IOStreams: tio.IOStreams,
		Config:    func() (*config.Config, error) { return cfg, nil },
		Services:  func() (*services.Registry, error) { return services.NewRegistry(exec), nil },
		Service:   "httpbin",
		Port:      80,
		Proto:     "tcp",
	}

	require.NoError(t, portRun(context.Background(), opts))
	assert.Equal(t, "49153\n", tio.OutBuf.String())
}

func TestPortRun_RequiresProjectName(t *testing.T) {
	tio := iostreamstest.New()
	cfg := configtest.NewConfigBuilder().WithProjectName("").Build()

	opts := &PortOptions{
		IOStreams: tio.IOStreams,
		Config:    func() (*config.Config, error) { return cfg, nil },
		Services: func() (*services.Registry, error) {
			t.Fatal("registry must not be built without a project name")
			return nil, nil
		},
	}

	err := portRun(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project name is required")
}

func TestPortRun_ResolutionError(t *testing.T) {
	tio := iostreamstest.New()
	exec := composetest.NewFakeExecutor("ci-1").On("port", composetest.Response{Output: ":0\n"})
	cfg := configtest.NewConfigBuilder().WithProjectName("ci-1").Build()

	opts := &PortOptions{
		IOStreams: tio.IOStreams,
		Config:    func() (*config.Config, error) { return cfg, nil },
		Services:  func() (*services.Registry, error) { return services.NewRegistry(exec), nil },
		Service:   "web",
		Port:      81,
		Proto:     "tcp",
	}

	err := portRun(context.Background(), opts)
	var resErr *services.ResolutionError
	assert.ErrorAs(t, err, &resErr)
	assert.Empty(t, tio.OutBuf.String())
}
