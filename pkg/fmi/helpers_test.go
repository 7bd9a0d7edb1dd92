package fmi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return body
}

// coverageXML renders a minimal multipointcoverage document. Each point is
// "name|lat lon"; positions and values are written verbatim.
func coverageXML(points []string, schema []string, positions, values string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<wfs:FeatureCollection numberMatched="1" numberReturned="1"
  xmlns:wfs="http://www.opengis.net/wfs/2.0"
  xmlns:om="http://www.opengis.net/om/2.0"
  xmlns:omso="http://inspire.ec.europa.eu/schemas/omso/3.0"
  xmlns:gml="http://www.opengis.net/gml/3.2"
  xmlns:swe="http://www.opengis.net/swe/2.0"
  xmlns:gmlcov="http://www.opengis.net/gmlcov/1.0"
  xmlns:sams="http://www.opengis.net/samplingSpatial/2.0">
  <wfs:member>
    <omso:GridSeriesObservation gml:id="obs-1">
      <om:featureOfInterest>
        <sams:SF_SpatialSamplingFeature gml:id="sf-1">
          <sams:shape>
            <gml:MultiPoint gml:id="mp-1">
`)
	for i, p := range points {
		name, pos, _ := strings.Cut(p, "|")
		fmt.Fprintf(&b, `              <gml:pointMember>
                <gml:Point gml:id="point-%d">
                  <gml:name>%s</gml:name>
                  <gml:pos>%s</gml:pos>
                </gml:Point>
              </gml:pointMember>
`, i, name, pos)
	}
	b.WriteString(`            </gml:MultiPoint>
          </sams:shape>
        </sams:SF_SpatialSamplingFeature>
      </om:featureOfInterest>
      <om:result>
        <gmlcov:MultiPointCoverage gml:id="mpcv-1">
          <gml:domainSet>
            <gmlcov:SimpleMultiPoint gml:id="smp-1">
              <gmlcov:positions>`)
	b.WriteString(positions)
	b.WriteString(`</gmlcov:positions>
            </gmlcov:SimpleMultiPoint>
          </gml:domainSet>
          <gml:rangeSet>
            <gml:DataBlock>
              <gml:doubleOrNilReasonTupleList>`)
	b.WriteString(values)
	b.WriteString(`</gml:doubleOrNilReasonTupleList>
            </gml:DataBlock>
          </gml:rangeSet>
          <gmlcov:rangeType>
            <swe:DataRecord>
`)
	for _, name := range schema {
		fmt.Fprintf(&b, "              <swe:field name=%q/>\n", name)
	}
	b.WriteString(`            </swe:DataRecord>
          </gmlcov:rangeType>
        </gmlcov:MultiPointCoverage>
      </om:result>
    </omso:GridSeriesObservation>
  </wfs:member>
</wfs:FeatureCollection>`)
	return b.String()
}

func ptr(v float64) *float64 {
	return &v
}
