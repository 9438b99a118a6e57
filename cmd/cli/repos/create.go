package repos

import (
	"errors"
	"fmt"
	"strings"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/giteactl/internal/gitea"
)

const (
	createCommandUseConstant                 = "create [name]"
	createCommandShortDescriptionConstant    = "Create a repository for the authenticated user"
	createCommandLongDescriptionConstant     = "create issues a single request to the Gitea API to create a repository owned by the authenticated user. The name defaults to the configured repository.name."
	createCommandExampleConstant             = "giteactl repo create infrastructure --description \"Provisioning scripts\" --auto-init"
	tooManyArgumentsErrorMessageConstant     = "repo create accepts at most one repository name"
	missingNameErrorMessageConstant          = "repository name must be provided"
	clientCreationErrorTemplateConstant      = "unable to create gitea client: %w"
	repositoryCreationErrorTemplateConstant  = "repo create %s failed: %w"
	repositoryRejectedErrorTemplateConstant  = "repo create %s failed: %w (status %d: %s)"
	createSuccessTemplateConstant            = "CREATED: %s\n"
	giteaLoggerNameConstant                  = "gitea"
	gitURLSettingConstant                    = "gitea url"
	gitURLConfigurationKeyConstant           = "gitea_url"
	gitURLEnvironmentVariableConstant        = "GITEA_URL"
	securityTokenSettingConstant             = "gitea token"
	securityTokenConfigurationKeyConstant    = "security_token"
	securityTokenEnvironmentVariableConstant = "SECURITY_TOKEN"
	missingSettingMessageTemplateConstant    = "The %s is not set"
	environmentVariableFieldConstant         = "environment_variable"
	autoInitFlagNameConstant                 = "auto-init"
	autoInitFlagUsageConstant                = "Initialize the repository with the selected files"
	defaultBranchFlagNameConstant            = "default-branch"
	defaultBranchFlagUsageConstant           = "Default branch of the repository"
	descriptionFlagNameConstant              = "description"
	descriptionFlagUsageConstant             = "Repository description"
	gitignoresFlagNameConstant               = "gitignores"
	gitignoresFlagUsageConstant              = "Gitignore templates to apply"
	issueLabelsFlagNameConstant              = "issue-labels"
	issueLabelsFlagUsageConstant             = "Issue label set to apply"
	licenseFlagNameConstant                  = "license"
	licenseFlagUsageConstant                 = "License template to apply"
	privateFlagNameConstant                  = "private"
	privateFlagUsageConstant                 = "Create a private repository"
	readmeFlagNameConstant                   = "readme"
	readmeFlagUsageConstant                  = "Readme template to apply"
	templateFlagNameConstant                 = "template"
	templateFlagUsageConstant                = "Mark the repository as a template"
	trustModelFlagNameConstant               = "trust-model"
	trustModelFlagUsageConstant              = "Commit signature trust model"
)

// CreateCommandBuilder assembles the repo create command.
type CreateCommandBuilder struct {
	LoggerProvider              LoggerProvider
	ServerConfigurationProvider ServerConfigurationProvider
	ConfigurationProvider       ConfigurationProvider
	HTTPClient                  gitea.HTTPClient
}

// Build constructs the repo create command.
func (builder *CreateCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           createCommandUseConstant,
		Short:         createCommandShortDescriptionConstant,
		Long:          createCommandLongDescriptionConstant,
		Example:       createCommandExampleConstant,
		Args:          cobra.ArbitraryArgs,
		RunE:          builder.run,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	defaults := DefaultCreateConfiguration()

	command.Flags().Bool(autoInitFlagNameConstant, defaults.AutoInit, autoInitFlagUsageConstant)
	command.Flags().String(defaultBranchFlagNameConstant, defaults.DefaultBranch, defaultBranchFlagUsageConstant)
	command.Flags().String(descriptionFlagNameConstant, defaults.Description, descriptionFlagUsageConstant)
	command.Flags().String(gitignoresFlagNameConstant, defaults.Gitignores, gitignoresFlagUsageConstant)
	command.Flags().String(issueLabelsFlagNameConstant, defaults.IssueLabels, issueLabelsFlagUsageConstant)
	command.Flags().String(licenseFlagNameConstant, defaults.License, licenseFlagUsageConstant)
	command.Flags().Bool(privateFlagNameConstant, defaults.Private, privateFlagUsageConstant)
	command.Flags().String(readmeFlagNameConstant, defaults.Readme, readmeFlagUsageConstant)
	command.Flags().Bool(templateFlagNameConstant, defaults.Template, templateFlagUsageConstant)
	command.Flags().String(trustModelFlagNameConstant, defaults.TrustModel, trustModelFlagUsageConstant)

	return command, nil
}

func (builder *CreateCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 1 {
		return errors.New(tooManyArgumentsErrorMessageConstant)
	}

	logger := resolveLogger(builder.LoggerProvider)

	serverConfiguration, serverConfigurationError := builder.resolveServerConfiguration(logger)
	if serverConfigurationError != nil {
		return serverConfigurationError
	}

	request, requestError := builder.buildRequest(command, arguments)
	if requestError != nil {
		return requestError
	}

	client, clientError := gitea.NewClient(logger.Named(giteaLoggerNameConstant), builder.resolveHTTPClient(serverConfiguration), serverConfiguration.BaseURL, serverConfiguration.AccessToken)
	if clientError != nil {
		return fmt.Errorf(clientCreationErrorTemplateConstant, clientError)
	}

	if creationError := client.CreateRepository(command.Context(), request); creationError != nil {
		var serviceError gitea.ServiceError
		if errors.As(creationError, &serviceError) && serviceError.Kind == gitea.FailureKindRejection {
			return fmt.Errorf(repositoryRejectedErrorTemplateConstant, request.Name, creationError, serviceError.StatusCode, serviceError.AdditionalInfo)
		}
		return fmt.Errorf(repositoryCreationErrorTemplateConstant, request.Name, creationError)
	}

	fmt.Fprintf(command.OutOrStdout(), createSuccessTemplateConstant, request.Name)

	return nil
}

func (builder *CreateCommandBuilder) resolveServerConfiguration(logger *zap.Logger) (ServerConfiguration, error) {
	serverConfiguration := ServerConfiguration{}
	if builder.ServerConfigurationProvider != nil {
		serverConfiguration = builder.ServerConfigurationProvider()
	}
	serverConfiguration.BaseURL = strings.TrimSpace(serverConfiguration.BaseURL)
	serverConfiguration.AccessToken = strings.TrimSpace(serverConfiguration.AccessToken)

	if len(serverConfiguration.BaseURL) == 0 {
		return ServerConfiguration{}, reportMissingSetting(logger, MissingConfigurationError{
			Setting:             gitURLSettingConstant,
			ConfigurationKey:    gitURLConfigurationKeyConstant,
			EnvironmentVariable: gitURLEnvironmentVariableConstant,
		})
	}

	if len(serverConfiguration.AccessToken) == 0 {
		return ServerConfiguration{}, reportMissingSetting(logger, MissingConfigurationError{
			Setting:             securityTokenSettingConstant,
			ConfigurationKey:    securityTokenConfigurationKeyConstant,
			EnvironmentVariable: securityTokenEnvironmentVariableConstant,
		})
	}

	return serverConfiguration, nil
}

func reportMissingSetting(logger *zap.Logger, missingError MissingConfigurationError) error {
	logger.Error(
		fmt.Sprintf(missingSettingMessageTemplateConstant, missingError.Setting),
		zap.String(environmentVariableFieldConstant, missingError.EnvironmentVariable),
	)
	return missingError
}

func (builder *CreateCommandBuilder) buildRequest(command *cobra.Command, arguments []string) (gitea.RepositoryCreationRequest, error) {
	configuration := DefaultCreateConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.Sanitize()

	if len(arguments) == 1 {
		configuration.Name = strings.TrimSpace(arguments[0])
	}
	if len(configuration.Name) == 0 {
		return gitea.RepositoryCreationRequest{}, errors.New(missingNameErrorMessageConstant)
	}

	flags := command.Flags()

	stringOverrides := []struct {
		flagName string
		target   *string
	}{
		{flagName: defaultBranchFlagNameConstant, target: &configuration.DefaultBranch},
		{flagName: descriptionFlagNameConstant, target: &configuration.Description},
		{flagName: gitignoresFlagNameConstant, target: &configuration.Gitignores},
		{flagName: issueLabelsFlagNameConstant, target: &configuration.IssueLabels},
		{flagName: licenseFlagNameConstant, target: &configuration.License},
		{flagName: readmeFlagNameConstant, target: &configuration.Readme},
		{flagName: trustModelFlagNameConstant, target: &configuration.TrustModel},
	}
	for _, override := range stringOverrides {
		flagValue, flagError := flags.GetString(override.flagName)
		if flagError != nil {
			return gitea.RepositoryCreationRequest{}, flagError
		}
		*override.target = selectStringValue(flagValue, flags.Changed(override.flagName), *override.target)
	}

	booleanOverrides := []struct {
		flagName string
		target   *bool
	}{
		{flagName: autoInitFlagNameConstant, target: &configuration.AutoInit},
		{flagName: privateFlagNameConstant, target: &configuration.Private},
		{flagName: templateFlagNameConstant, target: &configuration.Template},
	}
	for _, override := range booleanOverrides {
		if !flags.Changed(override.flagName) {
			continue
		}
		flagValue, flagError := flags.GetBool(override.flagName)
		if flagError != nil {
			return gitea.RepositoryCreationRequest{}, flagError
		}
		*override.target = flagValue
	}

	return configuration.RepositoryCreationRequest(), nil
}

func (builder *CreateCommandBuilder) resolveHTTPClient(serverConfiguration ServerConfiguration) gitea.HTTPClient {
	if builder.HTTPClient != nil {
		return builder.HTTPClient
	}

	httpClient := cleanhttp.DefaultClient()
	if serverConfiguration.HTTPTimeout > 0 {
		httpClient.Timeout = serverConfiguration.HTTPTimeout
	}
	return httpClient
}
