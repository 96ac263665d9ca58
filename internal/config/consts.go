package config

const (
	// ConfigFileName is the optional settings file looked up in the working directory.
	ConfigFileName = "composefixture.yaml"

	// EnvPrefix prefixes every native environment variable.
	EnvPrefix = "COMPOSEFIXTURE"

	// HostInternal as host override means tests run inside the compose
	// network: services are reached by name on their container port.
	HostInternal = "_internal"

	// ProjectNamePrefix prefixes generated project names.
	ProjectNamePrefix = "composefixture"
)

// Environment variables read in addition to the COMPOSEFIXTURE_ ones. The
// PYTEST_DOCKER_* names keep existing CI setups working unchanged.
const (
	EnvDockerHost         = "DOCKER_HOST"
	EnvPytestDockerHost   = "PYTEST_DOCKER_HOST"
	EnvPytestDockerLogDir = "PYTEST_DOCKER_LOG_DIR"
)

// Setting keys.
const (
	KeyComposeCommand = "compose_command"
	KeyComposeFiles   = "compose_files"
	KeyProjectName    = "project_name"
	KeyDockerHost     = "docker_host"
	KeyLocalSockets   = "local_sockets"
	KeyHostOverride   = "host_override"
	KeyLogDir         = "log_dir"
	KeyCommand        = "command"
	KeyWaitTimeout    = "wait.timeout"
	KeyWaitPause      = "wait.pause"
	KeyDaemonCheck    = "daemon_check"
	KeyLogFileEnabled = "logging.file_enabled"
	KeyLogFileDir     = "logging.dir"
	KeyLogMaxSizeMB   = "logging.max_size_mb"
	KeyLogMaxAgeDays  = "logging.max_age_days"
	KeyLogMaxBackups  = "logging.max_backups"
)
