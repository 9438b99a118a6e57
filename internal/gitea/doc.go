// Package gitea wraps the Gitea REST API calls used by giteactl.
//
// It exposes a Client that creates repositories under the authenticated user,
// the RepositoryCreationRequest value object with its server-side defaults, and
// the ServiceError type that every failed creation is reported through. The
// HTTP transport is injected through the HTTPClient interface so requests can
// be observed during testing.
package gitea
