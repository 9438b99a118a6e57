package gitea

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"
)

const (
	repositoryCreationPathConstant          = "/api/v1/user/repos"
	accessTokenQueryParameterConstant       = "access_token"
	contentTypeHeaderConstant               = "Content-Type"
	acceptHeaderConstant                    = "Accept"
	jsonMediaTypeConstant                   = "application/json"
	urlTrailingSeparatorConstant            = "/"
	repositoryCreationFailedMessageConstant = "Cannot create a repository"
	clientCreatedMessageConstant            = "gitea client created"
	creatingRepositoryMessageConstant       = "creating repository"
	repositoryNotCreatedMessageConstant     = "repository creation failed"
	repositoryCreatedMessageConstant        = "repository created"
	urlFieldConstant                        = "url"
	exceptionFieldConstant                  = "exception"
	invalidBaseURLErrorTemplateConstant     = "invalid gitea base url %q: %w"
	maximumResponseBodyBytesConstant        = 1 << 20
)

// HTTPClient issues HTTP requests on behalf of the Gitea client.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// Client creates repositories on a Gitea server. It is immutable after construction.
type Client struct {
	logger                *zap.Logger
	httpClient            HTTPClient
	baseURL               string
	accessToken           string
	repositoryCreationURL string
}

// NewClient constructs a Gitea client. Every trailing slash is stripped from baseURL.
// A nil logger discards log output and a nil httpClient falls back to a pooled default client.
func NewClient(logger *zap.Logger, httpClient HTTPClient, baseURL string, accessToken string) (*Client, error) {
	normalizedBaseURL := NormalizeBaseURL(baseURL)
	if len(normalizedBaseURL) == 0 {
		return nil, ErrBaseURLMissing
	}
	if len(accessToken) == 0 {
		return nil, ErrAccessTokenMissing
	}

	repositoryCreationURL := normalizedBaseURL + repositoryCreationPathConstant
	if _, parseError := url.Parse(repositoryCreationURL); parseError != nil {
		return nil, fmt.Errorf(invalidBaseURLErrorTemplateConstant, baseURL, parseError)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = cleanhttp.DefaultClient()
	}

	client := &Client{
		logger:                logger,
		httpClient:            httpClient,
		baseURL:               normalizedBaseURL,
		accessToken:           accessToken,
		repositoryCreationURL: repositoryCreationURL,
	}

	logger.Info(clientCreatedMessageConstant, zap.String(urlFieldConstant, baseURL))

	return client, nil
}

// NormalizeBaseURL trims surrounding whitespace and every trailing slash.
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), urlTrailingSeparatorConstant)
}

// BaseURL returns the normalized server URL.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// RepositoryCreationURL returns the endpoint used by CreateRepository.
func (client *Client) RepositoryCreationURL() string {
	return client.repositoryCreationURL
}

// CreateRepository creates a repository owned by the authenticated user with a single POST.
// Any failure is reported as a ServiceError; the call is never retried.
func (client *Client) CreateRepository(executionContext context.Context, request RepositoryCreationRequest) error {
	client.logger.Debug(creatingRepositoryMessageConstant, zap.Inline(request))

	httpRequest, requestError := client.newRepositoryCreationRequest(executionContext, request)
	if requestError != nil {
		return client.transportFailure(request, requestError)
	}

	httpResponse, transportError := client.httpClient.Do(httpRequest)
	if transportError != nil {
		return client.transportFailure(request, client.redactAccessToken(transportError))
	}
	defer func() { _ = httpResponse.Body.Close() }()

	if !isSuccessStatus(httpResponse.StatusCode) {
		responseBody, _ := io.ReadAll(io.LimitReader(httpResponse.Body, maximumResponseBodyBytesConstant))
		return ServiceError{
			Message:        repositoryCreationFailedMessageConstant,
			AdditionalInfo: string(responseBody),
			Kind:           FailureKindRejection,
			StatusCode:     httpResponse.StatusCode,
		}
	}

	client.logger.Debug(repositoryCreatedMessageConstant, zap.String(nameFieldConstant, request.Name))

	return nil
}

func (client *Client) newRepositoryCreationRequest(executionContext context.Context, request RepositoryCreationRequest) (*http.Request, error) {
	payload, encodingError := json.Marshal(request)
	if encodingError != nil {
		return nil, encodingError
	}

	// Validated in NewClient.
	endpoint, _ := url.Parse(client.repositoryCreationURL)
	query := endpoint.Query()
	query.Set(accessTokenQueryParameterConstant, client.accessToken)
	endpoint.RawQuery = query.Encode()

	httpRequest, requestError := http.NewRequestWithContext(executionContext, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if requestError != nil {
		return nil, requestError
	}
	httpRequest.Header.Set(contentTypeHeaderConstant, jsonMediaTypeConstant)
	httpRequest.Header.Set(acceptHeaderConstant, jsonMediaTypeConstant)

	return httpRequest, nil
}

func (client *Client) transportFailure(request RepositoryCreationRequest, cause error) error {
	client.logger.Error(
		repositoryNotCreatedMessageConstant,
		zap.Inline(request),
		zap.NamedError(exceptionFieldConstant, cause),
	)
	return ServiceError{
		Message: repositoryCreationFailedMessageConstant,
		Kind:    FailureKindTransport,
		Cause:   cause,
	}
}

// redactAccessToken drops the query string from url errors so the token never reaches logs.
func (client *Client) redactAccessToken(transportError error) error {
	var urlError *url.Error
	if errors.As(transportError, &urlError) {
		urlError.URL = client.repositoryCreationURL
	}
	return transportError
}

func isSuccessStatus(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
