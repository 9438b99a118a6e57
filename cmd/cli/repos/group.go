package repos

import "github.com/spf13/cobra"

const (
	groupUseConstant      = "repo"
	groupShortDescription = "Manage repositories on a Gitea server"
	groupLongDescription  = "repo groups subcommands that operate on repositories hosted by the configured Gitea server."
)

// CommandGroupBuilder assembles the repo command group.
type CommandGroupBuilder struct {
	LoggerProvider              LoggerProvider
	ServerConfigurationProvider ServerConfigurationProvider
	ConfigurationProvider       ConfigurationProvider
}

// Build constructs the repo command hierarchy.
func (builder *CommandGroupBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescription,
		Long:  groupLongDescription,
	}

	createBuilder := CreateCommandBuilder{
		LoggerProvider:              builder.LoggerProvider,
		ServerConfigurationProvider: builder.ServerConfigurationProvider,
		ConfigurationProvider:       builder.ConfigurationProvider,
	}
	createCommand, createError := createBuilder.Build()
	if createError == nil {
		command.AddCommand(createCommand)
	}

	return command, nil
}
