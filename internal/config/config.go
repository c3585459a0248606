package config

// Config represents the full application configuration.
type Config struct {
	GitHub        GitHubConfig        `yaml:"github"`
	Terraform     TerraformConfig     `yaml:"terraform"`
	Report        ReportConfig        `yaml:"report"`
	Deploy        DeployConfig        `yaml:"deploy"`
	HTTP          HTTPConfig          `yaml:"http"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// GitHubConfig identifies the repository and the API endpoint.
type GitHubConfig struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`

	// Token is the API token. Usually set via ${GITHUB_TOKEN} expansion
	// rather than written into the file.
	Token string `yaml:"token"`

	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL string `yaml:"baseURL"`
}

// TerraformConfig configures the terraform invocation.
type TerraformConfig struct {
	// Dir is the working directory the steps run in.
	Dir string `yaml:"dir"`

	// Binary is the terraform executable name or path.
	Binary string `yaml:"binary"`

	// VarFiles are passed to plan as -var-file arguments, in order.
	VarFiles []string `yaml:"varFiles"`
}

// ReportConfig configures plan comment posting.
type ReportConfig struct {
	// MaxChunkSize bounds each comment body chunk in bytes.
	MaxChunkSize int `yaml:"maxChunkSize"`

	// Strict fails the run when any comment part could not be posted.
	Strict bool `yaml:"strict"`
}

// DeployConfig configures the post-apply deploy stage.
type DeployConfig struct {
	// Image is the image name without registry or tag, e.g. "app".
	Image string `yaml:"image"`

	// Registry prefixes the image ref, e.g. "registry.example.com".
	Registry string `yaml:"registry"`

	// SSHTarget is the user@host the service runs on.
	SSHTarget string `yaml:"sshTarget"`

	// ContextDir is the docker build context directory.
	ContextDir string `yaml:"contextDir"`
}

// HTTPConfig holds global HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// StoreConfig configures the persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug, info, error
	Format  string `yaml:"format"` // json, human, or auto (human on a TTY, json otherwise)

	// RedactTokens scrubs API tokens from log output.
	RedactTokens bool `yaml:"redactTokens"`
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.GitHub = chooseGitHub(base.GitHub, overlay.GitHub)
	result.Terraform = chooseTerraform(base.Terraform, overlay.Terraform)
	result.Report = chooseReport(base.Report, overlay.Report)
	result.Deploy = chooseDeploy(base.Deploy, overlay.Deploy)
	result.HTTP = chooseHTTP(base.HTTP, overlay.HTTP)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)

	return result
}

func chooseGitHub(base, overlay GitHubConfig) GitHubConfig {
	result := base
	if overlay.Owner != "" {
		result.Owner = overlay.Owner
	}
	if overlay.Repo != "" {
		result.Repo = overlay.Repo
	}
	if overlay.Token != "" {
		result.Token = overlay.Token
	}
	if overlay.BaseURL != "" {
		result.BaseURL = overlay.BaseURL
	}
	return result
}

func chooseTerraform(base, overlay TerraformConfig) TerraformConfig {
	result := base
	if overlay.Dir != "" {
		result.Dir = overlay.Dir
	}
	if overlay.Binary != "" {
		result.Binary = overlay.Binary
	}
	if len(overlay.VarFiles) > 0 {
		result.VarFiles = overlay.VarFiles
	}
	return result
}

func chooseReport(base, overlay ReportConfig) ReportConfig {
	result := base
	if overlay.MaxChunkSize != 0 {
		result.MaxChunkSize = overlay.MaxChunkSize
	}
	if overlay.Strict {
		result.Strict = overlay.Strict
	}
	return result
}

func chooseDeploy(base, overlay DeployConfig) DeployConfig {
	result := base
	if overlay.Image != "" {
		result.Image = overlay.Image
	}
	if overlay.Registry != "" {
		result.Registry = overlay.Registry
	}
	if overlay.SSHTarget != "" {
		result.SSHTarget = overlay.SSHTarget
	}
	if overlay.ContextDir != "" {
		result.ContextDir = overlay.ContextDir
	}
	return result
}

func chooseHTTP(base, overlay HTTPConfig) HTTPConfig {
	if overlay.Timeout != "" || overlay.MaxRetries != 0 || overlay.InitialBackoff != "" || overlay.MaxBackoff != "" || overlay.BackoffMultiplier != 0 {
		return overlay
	}
	return base
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base
	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}
	return result
}

// ImageRef assembles the full image reference for a commit, or empty when
// deployment is not configured.
func (d DeployConfig) ImageRef(commitSHA string) string {
	if d.Image == "" || commitSHA == "" {
		return ""
	}
	tag := commitSHA
	if len(tag) > 12 {
		tag = tag[:12]
	}
	if d.Registry == "" {
		return d.Image + ":" + tag
	}
	return d.Registry + "/" + d.Image + ":" + tag
}
