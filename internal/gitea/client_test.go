package gitea_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/giteactl/internal/gitea"
)

const (
	testBaseURLConstant               = "http://git.example.com"
	testBaseURLWithSlashConstant      = "http://git.example.com/"
	testBaseURLWithSlashesConstant    = "http://git.example.com///"
	testExpectedEndpointConstant      = "http://git.example.com/api/v1/user/repos"
	testAccessTokenConstant           = "secret-token"
	testRepositoryNameConstant        = "test1"
	testRejectionBodyConstant         = `{"message":"name taken"}`
	testCreationFailedMessageConstant = "Cannot create a repository"
	testRepositoryCreatedMessage      = "repository created"
	testCreatingRepositoryMessage     = "creating repository"
	testRepositoryNotCreatedMessage   = "repository creation failed"
	testClientCreatedMessage          = "gitea client created"
	testConnectionRefusedMessage      = "dial tcp 127.0.0.1:3000: connect: connection refused"
	testCreationPathConstant          = "/api/v1/user/repos"
	testAccessTokenParameterConstant  = "access_token"
	testJSONContentTypeConstant       = "application/json"
	testNameFieldConstant             = "name"
	testExceptionFieldConstant        = "exception"
)

var expectedPayloadFieldNames = []string{
	"name",
	"auto_init",
	"default_branch",
	"description",
	"gitignores",
	"issue_labels",
	"license",
	"private",
	"readme",
	"template",
	"trust_model",
}

type stubHTTPClient struct {
	doFunc           func(request *http.Request) (*http.Response, error)
	recordedRequests []*http.Request
}

func (client *stubHTTPClient) Do(request *http.Request) (*http.Response, error) {
	client.recordedRequests = append(client.recordedRequests, request)
	if client.doFunc != nil {
		return client.doFunc(request)
	}
	return &http.Response{StatusCode: http.StatusCreated, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func TestNewClientNormalizesBaseURL(testInstance *testing.T) {
	testCases := []struct {
		name    string
		baseURL string
	}{
		{name: "without_trailing_slash", baseURL: testBaseURLConstant},
		{name: "with_trailing_slash", baseURL: testBaseURLWithSlashConstant},
		{name: "with_repeated_trailing_slashes", baseURL: testBaseURLWithSlashesConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := gitea.NewClient(zap.NewNop(), &stubHTTPClient{}, testCase.baseURL, testAccessTokenConstant)
			require.NoError(testInstance, creationError)
			require.Equal(testInstance, testBaseURLConstant, client.BaseURL())
			require.Equal(testInstance, testExpectedEndpointConstant, client.RepositoryCreationURL())
		})
	}
}

func TestNewClientValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		baseURL       string
		accessToken   string
		expectedError error
	}{
		{name: "missing_base_url", baseURL: "", accessToken: testAccessTokenConstant, expectedError: gitea.ErrBaseURLMissing},
		{name: "slash_only_base_url", baseURL: "/", accessToken: testAccessTokenConstant, expectedError: gitea.ErrBaseURLMissing},
		{name: "missing_access_token", baseURL: testBaseURLConstant, accessToken: "", expectedError: gitea.ErrAccessTokenMissing},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := gitea.NewClient(zap.NewNop(), &stubHTTPClient{}, testCase.baseURL, testCase.accessToken)
			require.ErrorIs(testInstance, creationError, testCase.expectedError)
			require.Nil(testInstance, client)
		})
	}
}

func TestNewClientLogsURLWithoutToken(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)

	_, creationError := gitea.NewClient(zap.New(observerCore), &stubHTTPClient{}, testBaseURLWithSlashConstant, testAccessTokenConstant)
	require.NoError(testInstance, creationError)

	entries := observedLogs.FilterMessage(testClientCreatedMessage).All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, zapcore.InfoLevel, entries[0].Level)

	contextMap := entries[0].ContextMap()
	require.Len(testInstance, contextMap, 1)
	require.Equal(testInstance, testBaseURLWithSlashConstant, contextMap["url"])
}

func TestCreateRepositorySendsExpectedRequest(testInstance *testing.T) {
	var capturedMethod string
	var capturedPath string
	var capturedToken string
	var capturedContentType string
	var capturedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		capturedMethod = request.Method
		capturedPath = request.URL.Path
		capturedToken = request.URL.Query().Get(testAccessTokenParameterConstant)
		capturedContentType = request.Header.Get("Content-Type")
		decodeError := json.NewDecoder(request.Body).Decode(&capturedBody)
		if decodeError != nil {
			responseWriter.WriteHeader(http.StatusBadRequest)
			return
		}
		responseWriter.WriteHeader(http.StatusCreated)
		_, _ = responseWriter.Write([]byte(`{"id":1,"name":"test1"}`))
	}))
	defer server.Close()

	client, creationError := gitea.NewClient(zap.NewNop(), server.Client(), server.URL+"/", testAccessTokenConstant)
	require.NoError(testInstance, creationError)

	request := gitea.DefaultRepositoryCreationRequest(testRepositoryNameConstant)
	request.Description = "provisioned"
	request.AutoInit = true

	require.NoError(testInstance, client.CreateRepository(context.Background(), request))

	require.Equal(testInstance, http.MethodPost, capturedMethod)
	require.Equal(testInstance, testCreationPathConstant, capturedPath)
	require.Equal(testInstance, testAccessTokenConstant, capturedToken)
	require.Equal(testInstance, testJSONContentTypeConstant, capturedContentType)

	require.Len(testInstance, capturedBody, len(expectedPayloadFieldNames))
	for _, fieldName := range expectedPayloadFieldNames {
		require.Contains(testInstance, capturedBody, fieldName)
	}

	require.Equal(testInstance, map[string]any{
		"name":           testRepositoryNameConstant,
		"auto_init":      true,
		"default_branch": "master",
		"description":    "provisioned",
		"gitignores":     "",
		"issue_labels":   "",
		"license":        "",
		"private":        true,
		"readme":         "",
		"template":       false,
		"trust_model":    "default",
	}, capturedBody)
}

func TestCreateRepositoryOutcomes(testInstance *testing.T) {
	simulatedTransportError := errors.New(testConnectionRefusedMessage)

	testCases := []struct {
		name   string
		doFunc func(request *http.Request) (*http.Response, error)
		verify func(testInstance *testing.T, creationError error, observedLogs *observer.ObservedLogs)
	}{
		{
			name: "transport_failure",
			doFunc: func(request *http.Request) (*http.Response, error) {
				return nil, simulatedTransportError
			},
			verify: func(testInstance *testing.T, creationError error, observedLogs *observer.ObservedLogs) {
				var serviceError gitea.ServiceError
				require.ErrorAs(testInstance, creationError, &serviceError)
				require.Equal(testInstance, testCreationFailedMessageConstant, serviceError.Error())
				require.Equal(testInstance, gitea.FailureKindTransport, serviceError.Kind)
				require.Empty(testInstance, serviceError.AdditionalInfo)
				require.ErrorIs(testInstance, creationError, simulatedTransportError)

				failureEntries := observedLogs.FilterMessage(testRepositoryNotCreatedMessage).All()
				require.Len(testInstance, failureEntries, 1)
				require.Equal(testInstance, zapcore.ErrorLevel, failureEntries[0].Level)
				contextMap := failureEntries[0].ContextMap()
				require.Equal(testInstance, testRepositoryNameConstant, contextMap[testNameFieldConstant])
				require.Equal(testInstance, testConnectionRefusedMessage, contextMap[testExceptionFieldConstant])
				require.Equal(testInstance, "default", contextMap["trust_model"])
			},
		},
		{
			name: "server_rejection",
			doFunc: func(request *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusUnprocessableEntity,
					Body:       io.NopCloser(strings.NewReader(testRejectionBodyConstant)),
				}, nil
			},
			verify: func(testInstance *testing.T, creationError error, observedLogs *observer.ObservedLogs) {
				var serviceError gitea.ServiceError
				require.ErrorAs(testInstance, creationError, &serviceError)
				require.Equal(testInstance, testCreationFailedMessageConstant, serviceError.Message)
				require.Equal(testInstance, testRejectionBodyConstant, serviceError.AdditionalInfo)
				require.Equal(testInstance, gitea.FailureKindRejection, serviceError.Kind)
				require.Equal(testInstance, http.StatusUnprocessableEntity, serviceError.StatusCode)
				require.Nil(testInstance, serviceError.Unwrap())
				require.Zero(testInstance, observedLogs.FilterMessage(testRepositoryCreatedMessage).Len())
			},
		},
		{
			name: "server_accepts",
			doFunc: func(request *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(strings.NewReader(`{"name":"test1"}`)),
				}, nil
			},
			verify: func(testInstance *testing.T, creationError error, observedLogs *observer.ObservedLogs) {
				require.NoError(testInstance, creationError)

				createdEntries := observedLogs.FilterMessage(testRepositoryCreatedMessage).All()
				require.Len(testInstance, createdEntries, 1)
				require.Equal(testInstance, zapcore.DebugLevel, createdEntries[0].Level)
				require.Equal(testInstance, testRepositoryNameConstant, createdEntries[0].ContextMap()[testNameFieldConstant])
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			httpClient := &stubHTTPClient{doFunc: testCase.doFunc}

			client, creationError := gitea.NewClient(zap.New(observerCore), httpClient, testBaseURLConstant, testAccessTokenConstant)
			require.NoError(testInstance, creationError)

			repositoryError := client.CreateRepository(context.Background(), gitea.DefaultRepositoryCreationRequest(testRepositoryNameConstant))
			require.Len(testInstance, httpClient.recordedRequests, 1)

			debugEntries := observedLogs.FilterMessage(testCreatingRepositoryMessage).All()
			require.Len(testInstance, debugEntries, 1)
			require.Equal(testInstance, zapcore.DebugLevel, debugEntries[0].Level)
			require.Equal(testInstance, testRepositoryNameConstant, debugEntries[0].ContextMap()[testNameFieldConstant])
			require.NotContains(testInstance, debugEntries[0].ContextMap(), testAccessTokenParameterConstant)

			testCase.verify(testInstance, repositoryError, observedLogs)
		})
	}
}

func TestCreateRepositoryHonorsCancelledContext(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, creationError := gitea.NewClient(zap.NewNop(), server.Client(), server.URL, testAccessTokenConstant)
	require.NoError(testInstance, creationError)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	repositoryError := client.CreateRepository(cancelledContext, gitea.DefaultRepositoryCreationRequest(testRepositoryNameConstant))

	var serviceError gitea.ServiceError
	require.ErrorAs(testInstance, repositoryError, &serviceError)
	require.Equal(testInstance, gitea.FailureKindTransport, serviceError.Kind)
	require.ErrorIs(testInstance, repositoryError, context.Canceled)
}

func TestCreateRepositoryRedactsTokenFromTransportErrors(testInstance *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close()

	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	client, creationError := gitea.NewClient(zap.New(observedCore), nil, serverURL, testAccessTokenConstant)
	require.NoError(testInstance, creationError)

	repositoryError := client.CreateRepository(context.Background(), gitea.DefaultRepositoryCreationRequest(testRepositoryNameConstant))

	var serviceError gitea.ServiceError
	require.ErrorAs(testInstance, repositoryError, &serviceError)
	require.Equal(testInstance, gitea.FailureKindTransport, serviceError.Kind)
	require.NotNil(testInstance, serviceError.Unwrap())
	require.NotContains(testInstance, serviceError.Unwrap().Error(), testAccessTokenConstant)

	failureEntries := observedLogs.FilterMessage(testRepositoryNotCreatedMessage).All()
	require.Len(testInstance, failureEntries, 1)
	exceptionValue, isString := failureEntries[0].ContextMap()[testExceptionFieldConstant].(string)
	require.True(testInstance, isString)
	require.NotContains(testInstance, exceptionValue, testAccessTokenConstant)
	require.Contains(testInstance, exceptionValue, testCreationPathConstant)
}
