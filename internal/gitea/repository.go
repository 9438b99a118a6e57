package gitea

import (
	"go.uber.org/zap/zapcore"
)

const (
	defaultBranchNameConstant  = "master"
	defaultTrustModelConstant  = "default"
	nameFieldConstant          = "name"
	autoInitFieldConstant      = "auto_init"
	defaultBranchFieldConstant = "default_branch"
	descriptionFieldConstant   = "description"
	gitignoresFieldConstant    = "gitignores"
	issueLabelsFieldConstant   = "issue_labels"
	licenseFieldConstant       = "license"
	privateFieldConstant       = "private"
	readmeFieldConstant        = "readme"
	templateFieldConstant      = "template"
	trustModelFieldConstant    = "trust_model"
)

// RepositoryCreationRequest is the body of POST /api/v1/user/repos.
// Values are sent as-is; the server validates them.
type RepositoryCreationRequest struct {
	Name          string `json:"name"`
	AutoInit      bool   `json:"auto_init"`
	DefaultBranch string `json:"default_branch"`
	Description   string `json:"description"`
	Gitignores    string `json:"gitignores"`
	IssueLabels   string `json:"issue_labels"`
	License       string `json:"license"`
	Private       bool   `json:"private"`
	Readme        string `json:"readme"`
	Template      bool   `json:"template"`
	TrustModel    string `json:"trust_model"`
}

// DefaultRepositoryCreationRequest returns a private repository request named name with every other field at its default.
func DefaultRepositoryCreationRequest(name string) RepositoryCreationRequest {
	return RepositoryCreationRequest{
		Name:          name,
		AutoInit:      false,
		DefaultBranch: defaultBranchNameConstant,
		Private:       true,
		Template:      false,
		TrustModel:    defaultTrustModelConstant,
	}
}

// MarshalLogObject renders every request field for structured logging.
func (request RepositoryCreationRequest) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString(nameFieldConstant, request.Name)
	encoder.AddBool(autoInitFieldConstant, request.AutoInit)
	encoder.AddString(defaultBranchFieldConstant, request.DefaultBranch)
	encoder.AddString(descriptionFieldConstant, request.Description)
	encoder.AddString(gitignoresFieldConstant, request.Gitignores)
	encoder.AddString(issueLabelsFieldConstant, request.IssueLabels)
	encoder.AddString(licenseFieldConstant, request.License)
	encoder.AddBool(privateFieldConstant, request.Private)
	encoder.AddString(readmeFieldConstant, request.Readme)
	encoder.AddBool(templateFieldConstant, request.Template)
	encoder.AddString(trustModelFieldConstant, request.TrustModel)
	return nil
}
