package fmi

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	noLocations := readFixture(t, "exception_no_locations.xml")
	invalidParam := readFixture(t, "exception_invalid_parameter.xml")
	observations := readFixture(t, "observations_helsinki.xml")
	empty := readFixture(t, "empty_collection.xml")

	tests := []struct {
		name        string
		status      int
		body        []byte
		wantKind    OutcomeKind
		wantMessage string
	}{
		{
			name:     "Success_Coverage_Document",
			status:   http.StatusOK,
			body:     observations,
			wantKind: OutcomeSuccess,
		},
		{
			name:     "Success_Non_XML_Left_For_Decoder",
			status:   http.StatusOK,
			body:     []byte("not xml at all"),
			wantKind: OutcomeSuccess,
		},
		{
			name:     "No_Data_Zero_Matched",
			status:   http.StatusOK,
			body:     empty,
			wantKind: OutcomeNoData,
		},
		{
			name:        "No_Data_Unknown_Place",
			status:      http.StatusBadRequest,
			body:        noLocations,
			wantKind:    OutcomeNoData,
			wantMessage: "No locations found for the place with the requested language!",
		},
		{
			name:        "No_Data_Envelope_With_OK_Status",
			status:      http.StatusOK,
			body:        noLocations,
			wantKind:    OutcomeNoData,
			wantMessage: "No locations found for the place with the requested language!",
		},
		{
			name:        "Client_Fault_Invalid_Parameter",
			status:      http.StatusBadRequest,
			body:        invalidParam,
			wantKind:    OutcomeClientFault,
			wantMessage: "Invalid latitude value 95.0",
		},
		{
			name:        "Client_Fault_Envelope_With_OK_Status",
			status:      http.StatusOK,
			body:        invalidParam,
			wantKind:    OutcomeClientFault,
			wantMessage: "Invalid latitude value 95.0",
		},
		{
			name:        "Client_Fault_Plain_Body",
			status:      http.StatusNotFound,
			body:        []byte("Not Found"),
			wantKind:    OutcomeClientFault,
			wantMessage: "Not Found",
		},
		{
			name:     "Server_Fault_Plain_Body",
			status:   http.StatusInternalServerError,
			body:     []byte("Internal Server Error"),
			wantKind: OutcomeServerFault,
		},
		{
			name:     "Server_Fault_Gateway",
			status:   http.StatusBadGateway,
			body:     []byte("<html>bad gateway</html>"),
			wantKind: OutcomeServerFault,
		},
		{
			name:     "Server_Fault_Redirect",
			status:   http.StatusFound,
			body:     nil,
			wantKind: OutcomeServerFault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Classify(tt.status, tt.body)

			assert.Equal(t, tt.wantKind, outcome.Kind, "kind was %s", outcome.Kind)
			assert.Equal(t, tt.status, outcome.StatusCode)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, outcome.Message)
			}
		})
	}
}

func TestClassify_ServerFaultKeepsBody(t *testing.T) {
	outcome := Classify(http.StatusInternalServerError, []byte("Internal Server Error"))

	err := outcome.Err()
	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, 500, serverErr.StatusCode)
	assert.Equal(t, "Internal Server Error", serverErr.Body)
	assert.True(t, serverErr.Retryable())
}

func TestOutcomeErr(t *testing.T) {
	assert.NoError(t, Outcome{Kind: OutcomeSuccess}.Err())
	assert.ErrorIs(t, Outcome{Kind: OutcomeNoData}.Err(), ErrNoDataAvailable)

	var clientErr *ClientError
	err := Outcome{Kind: OutcomeClientFault, StatusCode: 400, Message: "bad bbox"}.Err()
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, 400, clientErr.StatusCode)
	assert.Equal(t, "bad bbox", clientErr.Message)
	assert.Equal(t, "fmi: client error [400]: bad bbox", err.Error())
}

func TestExceptionTextDirectlyUnderReport(t *testing.T) {
	body := []byte(`<ExceptionReport><ExceptionText>No stations found for the bbox</ExceptionText></ExceptionReport>`)

	assert.Equal(t, OutcomeNoData, Classify(http.StatusBadRequest, body).Kind)
}
