package endpoint

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

func TestNewCmdEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantOpts EndpointOptions
		wantErr  bool
	}{
		{
			name:     "basic",
			input:    "httpbin 80",
			wantOpts: EndpointOptions{Service: "httpbin", Port: 80},
		},
		{
			name:     "url",
			input:    "httpbin 80 --url http",
			wantOpts: EndpointOptions{Service: "httpbin", Port: 80, Scheme: "http"},
		},
		{
			name:     "json",
			input:    "--json db 5432",
			wantOpts: EndpointOptions{Service: "db", Port: 5432, JSON: true},
		},
		{
			name:    "url and json",
			input:   "--json --url http db 5432",
			wantErr: true,
		},
		{
			name:    "no arguments",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &cmdutil.Factory{}

			var gotOpts *EndpointOptions
			cmd := NewCmdEndpoint(f, func(_ context.Context, opts *EndpointOptions) error {
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
			assert.Equal(t, tt.wantOpts.Service, gotOpts.Service)
			assert.Equal(t, tt.wantOpts.Port, gotOpts.Port)
			assert.Equal(t, tt.wantOpts.Scheme, gotOpts.Scheme)
			assert.Equal(t, tt.wantOpts.JSON, gotOpts.JSON)
		})
	}
}

func loopback() (string, error) { return "127.0.0.1", nil }

func TestEndpointRun(t *testing.T) {
	tests := []struct {
		name     string
		override string
		scheme   string
		json     bool
		want     string
	}{
		{name: "daemon host", want: "127.0.0.1:8000\n"},
		{name: "internal network", override: config.HostInternal, want: "httpbin:80\n"},
		{name: "explicit host", override: "myhost", want: "myhost:8000\n"},
		{name: "url", scheme: "http", want: "http://127.0.0.1:8000/\n"},
		{name: "json", json: true, want: "{\n  \"service\": \"httpbin\",\n  \"host\": \"127.0.0.1\",\n  \"port\": 8000\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tio := iostreamstest.New()
			exec := composetest.NewFakeExecutor("ci-1").
				On("port httpbin 80", composetest.Response{Output: "0.0.0.0:8000\n"})
			cfg := configtest.NewConfigBuilder().WithProjectName("ci-1").WithHostOverride(tt.override).Build()

			opts := &EndpointOptions{
				IOStreams: tio.IOStreams,
				Config:    func() (*config.Config, error) { return cfg, nil },
				Services: func() (*services.Registry, error) {
					return services.NewRegistry(exec,
						services.WithHostOverride(cfg.HostOverride),
						services.WithHostResolver(loopback),
					), nil
				},
				Service: "httpbin",
				Port:    80,
				Scheme:  tt.scheme,
				JSON:    tt.json,
			}

			require.NoError(t, endpointRun(context.Background(), opts))
			assert.Equal(t, tt.want, tio.OutBuf.String())
		})
	}
}

func TestEndpointRun_InternalNeedsNoProject(t *testing.T) {
	tio := iostreamstest.New()
	cfg := configtest.NewConfigBuilder().WithProjectName("").WithHostOverride(config.HostInternal).Build()

	opts := &EndpointOptions{
		IOStreams: tio.IOStreams,
		Config:    func() (*config.Config, error) { return cfg, nil },
		Services: func() (*services.Registry, error) {
			return services.NewRegistry(composetest.NewFakeExecutor("x"), services.WithHostOverride(config.HostInternal)), nil
		},
		Service: "db",
		Port:    5432,
	}

	require.NoError(t, endpointRun(context.Background(), opts))
	assert.Equal(t, "db:5432\n", tio.OutBuf.String())
}
