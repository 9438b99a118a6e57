package repos

import (
	"fmt"
	"strings"
	"time"

	"github.com/temirov/giteactl/internal/gitea"
)

const (
	defaultRepositoryNameConstant             = "test1"
	configurationNameKeyConstant              = "name"
	configurationAutoInitKeyConstant          = "auto_init"
	configurationDefaultBranchKeyConstant     = "default_branch"
	configurationDescriptionKeyConstant       = "description"
	configurationGitignoresKeyConstant        = "gitignores"
	configurationIssueLabelsKeyConstant       = "issue_labels"
	configurationLicenseKeyConstant           = "license"
	configurationPrivateKeyConstant           = "private"
	configurationReadmeKeyConstant            = "readme"
	configurationTemplateKeyConstant          = "template"
	configurationTrustModelKeyConstant        = "trust_model"
	missingConfigurationErrorTemplateConstant = "%s is not set (configure %s or the %s environment variable)"
)

// ServerConfiguration describes how to reach the Gitea server.
type ServerConfiguration struct {
	BaseURL     string
	AccessToken string
	HTTPTimeout time.Duration
}

// CreateConfiguration holds the defaults applied to every repository creation request.
type CreateConfiguration struct {
	Name          string `mapstructure:"name"`
	AutoInit      bool   `mapstructure:"auto_init"`
	DefaultBranch string `mapstructure:"default_branch"`
	Description   string `mapstructure:"description"`
	Gitignores    string `mapstructure:"gitignores"`
	IssueLabels   string `mapstructure:"issue_labels"`
	License       string `mapstructure:"license"`
	Private       bool   `mapstructure:"private"`
	Readme        string `mapstructure:"readme"`
	Template      bool   `mapstructure:"template"`
	TrustModel    string `mapstructure:"trust_model"`
}

// DefaultCreateConfiguration mirrors the Gitea request defaults for the reference repository name.
func DefaultCreateConfiguration() CreateConfiguration {
	request := gitea.DefaultRepositoryCreationRequest(defaultRepositoryNameConstant)
	return CreateConfiguration{
		Name:          request.Name,
		AutoInit:      request.AutoInit,
		DefaultBranch: request.DefaultBranch,
		Description:   request.Description,
		Gitignores:    request.Gitignores,
		IssueLabels:   request.IssueLabels,
		License:       request.License,
		Private:       request.Private,
		Readme:        request.Readme,
		Template:      request.Template,
		TrustModel:    request.TrustModel,
	}
}

// DefaultConfigurationValues produces Viper defaults for repository creation under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCreateConfiguration()
	return map[string]any{
		rootKey + "." + configurationNameKeyConstant:          defaults.Name,
		rootKey + "." + configurationAutoInitKeyConstant:      defaults.AutoInit,
		rootKey + "." + configurationDefaultBranchKeyConstant: defaults.DefaultBranch,
		rootKey + "." + configurationDescriptionKeyConstant:   defaults.Description,
		rootKey + "." + configurationGitignoresKeyConstant:    defaults.Gitignores,
		rootKey + "." + configurationIssueLabelsKeyConstant:   defaults.IssueLabels,
		rootKey + "." + configurationLicenseKeyConstant:       defaults.License,
		rootKey + "." + configurationPrivateKeyConstant:       defaults.Private,
		rootKey + "." + configurationReadmeKeyConstant:        defaults.Readme,
		rootKey + "." + configurationTemplateKeyConstant:      defaults.Template,
		rootKey + "." + configurationTrustModelKeyConstant:    defaults.TrustModel,
	}
}

// Sanitize trims the repository name.
func (configuration CreateConfiguration) Sanitize() CreateConfiguration {
	sanitized := configuration
	sanitized.Name = strings.TrimSpace(configuration.Name)
	return sanitized
}

// RepositoryCreationRequest converts the configuration into a Gitea request.
func (configuration CreateConfiguration) RepositoryCreationRequest() gitea.RepositoryCreationRequest {
	return gitea.RepositoryCreationRequest{
		Name:          configuration.Name,
		AutoInit:      configuration.AutoInit,
		DefaultBranch: configuration.DefaultBranch,
		Description:   configuration.Description,
		Gitignores:    configuration.Gitignores,
		IssueLabels:   configuration.IssueLabels,
		License:       configuration.License,
		Private:       configuration.Private,
		Readme:        configuration.Readme,
		Template:      configuration.Template,
		TrustModel:    configuration.TrustModel,
	}
}

// MissingConfigurationError reports a required setting that was not provided.
type MissingConfigurationError struct {
	Setting             string
	ConfigurationKey    string
	EnvironmentVariable string
}

// Error describes the missing setting.
func (missingError MissingConfigurationError) Error() string {
	return fmt.Sprintf(missingConfigurationErrorTemplateConstant, missingError.Setting, missingError.ConfigurationKey, missingError.EnvironmentVariable)
}
