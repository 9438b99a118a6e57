package repos_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	repos "github.com/temirov/giteactl/cmd/cli/repos"
	"github.com/temirov/giteactl/internal/gitea"
)

func TestDefaultConfigurationValuesCoverEveryField(testInstance *testing.T) {
	defaultValues := repos.DefaultConfigurationValues("repository")

	require.Equal(testInstance, map[string]any{
		"repository.name":           "test1",
		"repository.auto_init":      false,
		"repository.default_branch": "master",
		"repository.description":    "",
		"repository.gitignores":     "",
		"repository.issue_labels":   "",
		"repository.license":        "",
		"repository.private":        true,
		"repository.readme":         "",
		"repository.template":       false,
		"repository.trust_model":    "default",
	}, defaultValues)
}

func TestCreateConfigurationRepositoryCreationRequest(testInstance *testing.T) {
	configuration := repos.DefaultCreateConfiguration()
	configuration.Name = "  padded  "

	request := configuration.Sanitize().RepositoryCreationRequest()

	expectedRequest := gitea.DefaultRepositoryCreationRequest("padded")
	require.Equal(testInstance, expectedRequest, request)
}

func TestMissingConfigurationErrorMessage(testInstance *testing.T) {
	missingError := repos.MissingConfigurationError{
		Setting:             "gitea url",
		ConfigurationKey:    "gitea_url",
		EnvironmentVariable: "GITEA_URL",
	}

	require.Equal(testInstance, "gitea url is not set (configure gitea_url or the GITEA_URL environment variable)", missingError.Error())
}
