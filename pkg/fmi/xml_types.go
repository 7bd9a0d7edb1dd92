package fmi

import (
	"encoding/xml"
	"strings"
)

// FeatureCollection represents the root element of the FMI WFS XML response
type FeatureCollection struct {
	XMLName        xml.Name        `xml:"FeatureCollection"`
	NumberMatched  string          `xml:"numberMatched,attr"`
	NumberReturned string          `xml:"numberReturned,attr"`
	TimeStamp      string          `xml:"timeStamp,attr"`
	Members        []FeatureMember `xml:"member"`
}

// FeatureMember contains the observation data
type FeatureMember struct {
	GridSeriesObservation *GridSeriesObservation `xml:"GridSeriesObservation"`
}

// GridSeriesObservation represents a grid series observation
type GridSeriesObservation struct {
	GmlID                  string                 `xml:"id,attr"`
	ObservedProperty       ObservedProperty       `xml:"observedProperty"`
	SpatialSamplingFeature SpatialSamplingFeature `xml:"featureOfInterest>SF_SpatialSamplingFeature"`
	Result                 Result                 `xml:"result"`
}

// ObservedProperty contains observed property information
type ObservedProperty struct {
	Href string `xml:"href,attr"`
}

// SpatialSamplingFeature contains the station geometries
type SpatialSamplingFeature struct {
	GmlID string `xml:"id,attr"`
	Shape Shape  `xml:"shape"`
}

// Shape contains the geometric shape information
type Shape struct {
	MultiPoint *MultiPoint `xml:"MultiPoint"`
}

// MultiPoint holds either repeated pointMember elements (bounding box
// queries) or a single pointMembers wrapper (place queries).
type MultiPoint struct {
	GmlID        string        `xml:"id,attr"`
	PointMember  []PointMember `xml:"pointMember"`
	PointMembers []Point       `xml:"pointMembers>Point"`
}

// PointMember contains a point
type PointMember struct {
	Point Point `xml:"Point"`
}

// Point represents a named geographic point
type Point struct {
	GmlID string `xml:"id,attr"`
	Name  string `xml:"name"`
	Pos   string `xml:"pos"`
}

// Points returns every point of the collection regardless of which shape
// the document used.
func (mp *MultiPoint) Points() []Point {
	points := make([]Point, 0, len(mp.PointMember)+len(mp.PointMembers))
	for _, member := range mp.PointMember {
		points = append(points, member.Point)
	}
	return append(points, mp.PointMembers...)
}

// Result contains the observation results
type Result struct {
	MultiPointCoverage *MultiPointCoverage `xml:"MultiPointCoverage"`
}

// MultiPointCoverage contains multi-point coverage data
type MultiPointCoverage struct {
	GmlID     string    `xml:"id,attr"`
	DomainSet DomainSet `xml:"domainSet"`
	RangeSet  RangeSet  `xml:"rangeSet"`
	RangeType RangeType `xml:"rangeType"`
}

// DomainSet contains the domain set
type DomainSet struct {
	SimpleMultiPoint *SimpleMultiPoint `xml:"SimpleMultiPoint"`
}

// SimpleMultiPoint contains position data
type SimpleMultiPoint struct {
	GmlID     string `xml:"id,attr"`
	Positions string `xml:"positions"`
}

// RangeSet contains the range set data
type RangeSet struct {
	DataBlock *DataBlock `xml:"DataBlock"`
}

// DataBlock contains the actual data values
type DataBlock struct {
	DoubleOrNilReasonTupleList string `xml:"doubleOrNilReasonTupleList"`
}

// RangeType contains range type information
type RangeType struct {
	DataRecord *DataRecord `xml:"DataRecord"`
}

// DataRecord contains data record fields
type DataRecord struct {
	Fields []Field `xml:"field"`
}

// Field represents a data field
type Field struct {
	Name string `xml:"name,attr"`
	Href string `xml:"href,attr"`
}

// ExceptionReport is the OWS fault envelope FMI returns instead of a
// feature collection when it rejects a request. Some responses nest the
// texts under Exception, some place them directly under the report.
type ExceptionReport struct {
	XMLName    xml.Name    `xml:"ExceptionReport"`
	Exceptions []Exception `xml:"Exception"`
	Texts      []string    `xml:"ExceptionText"`
}

// Exception is a single OWS exception
type Exception struct {
	ExceptionCode string   `xml:"exceptionCode,attr"`
	Locator       string   `xml:"locator,attr"`
	ExceptionText []string `xml:"ExceptionText"`
}

// Message returns the first exception text of the report.
func (r *ExceptionReport) Message() string {
	for _, exc := range r.Exceptions {
		for _, text := range exc.ExceptionText {
			if text = strings.TrimSpace(text); text != "" {
				return text
			}
		}
	}
	for _, text := range r.Texts {
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return ""
}

func (r *ExceptionReport) allTexts() []string {
	texts := make([]string, 0, len(r.Texts))
	for _, exc := range r.Exceptions {
		texts = append(texts, exc.ExceptionText...)
	}
	return append(texts, r.Texts...)
}
