package fmi

import (
	"bytes"
	"encoding/xml"
	"regexp"
)

// OutcomeKind is the closed set of classifications of an FMI response.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeClientFault
	OutcomeServerFault
	OutcomeNoData
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeClientFault:
		return "client_fault"
	case OutcomeServerFault:
		return "server_fault"
	case OutcomeNoData:
		return "no_data"
	default:
		return "unknown"
	}
}

// Outcome is the result of classifying a response before it is decoded.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	// Message is the fault text for client faults.
	Message string
	// Body is the raw response body.
	Body []byte
}

// Err converts the outcome into the package error taxonomy. Success
// returns nil.
func (o Outcome) Err() error {
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeNoData:
		return ErrNoDataAvailable
	case OutcomeClientFault:
		return &ClientError{StatusCode: o.StatusCode, Message: o.Message}
	default:
		return &ServerError{StatusCode: o.StatusCode, Body: string(o.Body)}
	}
}

// FMI answers unknown places and empty bounding boxes with this text, e.g.
// "No locations found for the place with the requested language!".
var noResultsPattern = regexp.MustCompile(`(?i)no (locations|stations) found`)

// Classify inspects the status code and an embedded exception envelope.
// It must run before decoding: fault envelopes do not follow the coverage
// schema and would otherwise surface as decode failures.
func Classify(statusCode int, body []byte) Outcome {
	outcome := Outcome{StatusCode: statusCode, Body: body}

	switch {
	case statusCode >= 200 && statusCode < 300:
		root, ok := rootElement(body)
		if !ok {
			// Let the decoder report the structural problem.
			outcome.Kind = OutcomeSuccess
			return outcome
		}
		switch root.Name.Local {
		case "ExceptionReport":
			return classifyEnvelope(outcome, body)
		case "FeatureCollection":
			if attr(root, "numberMatched") == "0" {
				outcome.Kind = OutcomeNoData
				return outcome
			}
		}
		outcome.Kind = OutcomeSuccess
		return outcome

	case statusCode >= 400 && statusCode < 500:
		if report, ok := parseExceptionReport(body); ok {
			if msg := report.Message(); msg != "" {
				outcome.Message = msg
				if reportsNoResults(report) {
					outcome.Kind = OutcomeNoData
					return outcome
				}
				outcome.Kind = OutcomeClientFault
				return outcome
			}
		}
		outcome.Message = string(body)
		outcome.Kind = OutcomeClientFault
		return outcome

	default:
		outcome.Kind = OutcomeServerFault
		return outcome
	}
}

// classifyEnvelope handles an exception report delivered with a non-error
// status. The fault is attributed by the original status code.
func classifyEnvelope(outcome Outcome, body []byte) Outcome {
	report, ok := parseExceptionReport(body)
	if !ok {
		outcome.Kind = OutcomeServerFault
		return outcome
	}

	outcome.Message = report.Message()
	if reportsNoResults(report) {
		outcome.Kind = OutcomeNoData
		return outcome
	}
	if outcome.Message == "" {
		outcome.Message = string(body)
	}
	if outcome.StatusCode >= 500 {
		outcome.Kind = OutcomeServerFault
	} else {
		outcome.Kind = OutcomeClientFault
	}
	return outcome
}

// reportsNoResults checks every exception text; FMI may put the reason
// after a generic "Invalid parameter value" line.
func reportsNoResults(report *ExceptionReport) bool {
	for _, text := range report.allTexts() {
		if noResultsPattern.MatchString(text) {
			return true
		}
	}
	return false
}

func parseExceptionReport(body []byte) (*ExceptionReport, bool) {
	var report ExceptionReport
	if err := xml.Unmarshal(body, &report); err != nil {
		return nil, false
	}
	return &report, true
}

// rootElement returns the first start element of an XML document.
func rootElement(body []byte) (xml.StartElement, bool) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := decoder.Token()
		if err != nil {
			return xml.StartElement{}, false
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, true
		}
	}
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
