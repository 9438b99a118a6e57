package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/giteactl/cmd/cli/repos"
	"github.com/temirov/giteactl/internal/gitea"
	"github.com/temirov/giteactl/internal/utils"
)

const (
	applicationNameConstant                  = "giteactl"
	applicationShortDescriptionConstant      = "Command-line interface for managing Gitea repositories"
	applicationLongDescriptionConstant       = "giteactl talks to the Gitea HTTP API using a personal access token and emits structured JSON logs."
	configFileFlagNameConstant               = "config"
	configFileFlagUsageConstant              = "Optional path to a configuration file (YAML or JSON)."
	environmentFileFlagNameConstant          = "env-file"
	environmentFileFlagUsageConstant         = "Optional dotenv file applied before reading environment variables."
	defaultEnvironmentFilePathConstant       = ".env"
	logLevelFlagNameConstant                 = "log-level"
	logLevelFlagUsageConstant                = "Override the configured log level (DEBUG, INFO, WARNING, ERROR, CRITICAL)."
	logDestinationFlagNameConstant           = "log-destination"
	logDestinationFlagUsageConstant          = "Override the configured log destination (stdout, stderr, or a file path)."
	giteaURLConfigKeyConstant                = "gitea_url"
	securityTokenConfigKeyConstant           = "security_token"
	logLevelConfigKeyConstant                = "log_level"
	logDestinationConfigKeyConstant          = "log_destination"
	httpTimeoutConfigKeyConstant             = "http_timeout"
	repositoryConfigurationKeyConstant       = "repository"
	environmentPrefixConstant                = ""
	configurationNameConstant                = "giteactl"
	configurationTypeConstant                = "yaml"
	defaultConfigurationSearchPathConstant   = "."
	configurationInitializedMessageConstant  = "configuration initialized"
	configurationLogLevelFieldConstant       = "log_level"
	configurationLogDestinationFieldConstant = "log_destination"
	configurationFileFieldConstant           = "config_file"
	environmentFileFieldConstant             = "env_file"
	configurationLoadErrorTemplateConstant   = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant      = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant          = "unable to flush logger: %w"
	rootCommandDebugMessageConstant          = "giteactl CLI diagnostics"
	logFieldCommandNameConstant              = "command_name"
	logFieldArgumentsConstant                = "arguments"
	loggerNotInitializedMessageConstant      = "logger not initialized"
)

// Process exit codes reported by ExitCode.
const (
	ExitCodeSuccess      = 0
	ExitCodeFailure      = 1
	ExitCodeServiceError = 2
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	GiteaURL       string                    `mapstructure:"gitea_url"`
	SecurityToken  string                    `mapstructure:"security_token"`
	LogLevel       string                    `mapstructure:"log_level"`
	LogDestination string                    `mapstructure:"log_destination"`
	HTTPTimeout    time.Duration             `mapstructure:"http_timeout"`
	Repository     repos.CreateConfiguration `mapstructure:"repository"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand             *cobra.Command
	configurationLoader     *utils.ConfigurationLoader
	loggerFactory           *utils.LoggerFactory
	logger                  *zap.Logger
	configuration           ApplicationConfiguration
	configurationMetadata   utils.LoadedConfiguration
	configurationFilePath   string
	environmentFilePath     string
	logLevelFlagValue       string
	logDestinationFlagValue string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.environmentFilePath, environmentFileFlagNameConstant, defaultEnvironmentFilePathConstant, environmentFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logDestinationFlagValue, logDestinationFlagNameConstant, "", logDestinationFlagUsageConstant)

	repositoryGroupBuilder := repos.CommandGroupBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ServerConfigurationProvider: application.serverConfiguration,
		ConfigurationProvider: func() repos.CreateConfiguration {
			return application.configuration.Repository
		},
	}
	repositoryGroupCommand, repositoryGroupBuildError := repositoryGroupBuilder.Build()
	if repositoryGroupBuildError == nil {
		cobraCommand.AddCommand(repositoryGroupCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	syncError := application.flushLogger()
	application.loggerFactory.Close()
	if syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// ExitCode maps an execution error to the process exit status.
func ExitCode(executionError error) int {
	if executionError == nil {
		return ExitCodeSuccess
	}

	var serviceError gitea.ServiceError
	if errors.As(executionError, &serviceError) {
		return ExitCodeServiceError
	}

	return ExitCodeFailure
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		giteaURLConfigKeyConstant:       "",
		securityTokenConfigKeyConstant:  "",
		logLevelConfigKeyConstant:       string(utils.LogLevelCritical),
		logDestinationConfigKeyConstant: string(utils.LogDestinationStdout),
		httpTimeoutConfigKeyConstant:    time.Duration(0),
	}
	for configurationKey, configurationValue := range repos.DefaultConfigurationValues(repositoryConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	sources := utils.ConfigurationSources{
		ConfigurationFilePath: application.configurationFilePath,
		EnvironmentFilePath:   application.environmentFilePath,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(sources, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logDestinationFlagNameConstant) {
		application.configuration.LogDestination = application.logDestinationFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(utils.LoggerSettings{
		Level:       utils.ParseLogLevel(application.configuration.LogLevel),
		Destination: utils.ParseLogDestination(application.configuration.LogDestination),
		Name:        applicationNameConstant,
	})
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, string(utils.ParseLogLevel(application.configuration.LogLevel))),
		zap.String(configurationLogDestinationFieldConstant, string(utils.ParseLogDestination(application.configuration.LogDestination))),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(environmentFileFieldConstant, application.configurationMetadata.EnvironmentFileUsed),
	)

	return nil
}

func (application *Application) serverConfiguration() repos.ServerConfiguration {
	return repos.ServerConfiguration{
		BaseURL:     application.configuration.GiteaURL,
		AccessToken: application.configuration.SecurityToken,
		HTTPTimeout: application.configuration.HTTPTimeout,
	}
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
