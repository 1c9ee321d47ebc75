package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQuakeML = `<?xml version="1.0" encoding="UTF-8"?>
<q:quakeml xmlns:q="http://quakeml.org/xmlns/quakeml/1.2" xmlns="http://quakeml.org/xmlns/bed/1.2">
  <eventParameters publicID="smi:local/catalog">
    <event publicID="smi:local/event/1">
      <preferredOriginID>smi:local/origin/pref</preferredOriginID>
      <preferredFocalMechanismID>smi:local/fm/2</preferredFocalMechanismID>
      <description><text>GULF OF CALIFORNIA</text><type>region name</type></description>
      <description><text>Event 1</text></description>
      <origin publicID="smi:local/origin/first">
        <time><value>2010-01-01T00:00:00.000000Z</value></time>
        <latitude><value>1.0</value></latitude>
        <longitude><value>2.0</value></longitude>
        <depth><value>1000.0</value></depth>
      </origin>
      <origin publicID="smi:local/origin/pref">
        <time><value>2012-04-12T07:15:48.500000Z</value></time>
        <latitude><value>28.5</value></latitude>
        <longitude><value>-113.1</value></longitude>
        <depth><value>13000.0</value></depth>
      </origin>
      <focalMechanism publicID="smi:local/fm/1">
        <momentTensor publicID="smi:local/mt/1">
          <tensor>
            <Mrr><value>1</value></Mrr><Mtt><value>1</value></Mtt><Mpp><value>1</value></Mpp>
            <Mrt><value>1</value></Mrt><Mrp><value>1</value></Mrp><Mtp><value>1</value></Mtp>
          </tensor>
        </momentTensor>
      </focalMechanism>
      <focalMechanism publicID="smi:local/fm/2">
        <momentTensor publicID="smi:local/mt/2">
          <tensor>
            <Mrr><value>-2.11e18</value></Mrr><Mtt><value>-4.22e19</value></Mtt><Mpp><value>4.43e19</value></Mpp>
            <Mrt><value>-9.35e18</value></Mrt><Mrp><value>-8.38e18</value></Mrp><Mtp><value>-6.44e18</value></Mtp>
          </tensor>
        </momentTensor>
      </focalMechanism>
    </event>
    <event publicID="smi:local/event/2">
      <origin publicID="smi:local/origin/a">
        <time><value>2013-01-01T00:00:00Z</value></time>
        <latitude><value>10</value></latitude>
        <longitude><value>20</value></longitude>
        <depth><value>5000</value></depth>
      </origin>
      <origin publicID="smi:local/origin/derived">
        <time><value>2013-01-01T00:00:01Z</value></time>
        <latitude><value>11</value></latitude>
        <longitude><value>21</value></longitude>
        <depth><value>7500</value></depth>
      </origin>
      <focalMechanism publicID="smi:local/fm/3">
        <momentTensor publicID="smi:local/mt/3">
          <derivedOriginID>smi:local/origin/derived</derivedOriginID>
          <tensor>
            <Mrr><value>1</value></Mrr><Mtt><value>2</value></Mtt><Mpp><value>3</value></Mpp>
            <Mrt><value>4</value></Mrt><Mrp><value>5</value></Mrp><Mtp><value>6</value></Mtp>
          </tensor>
        </momentTensor>
      </focalMechanism>
    </event>
  </eventParameters>
</q:quakeml>`

const testStationXML = `<?xml version="1.0" encoding="UTF-8"?>
<FDSNStationXML xmlns="http://www.fdsn.org/xml/station/1" schemaVersion="1.0">
  <Source>test</Source>
  <Network code="HT">
    <Station code="HORT">
      <Latitude>40.6</Latitude><Longitude>23.1</Longitude><Elevation>900</Elevation>
      <Channel code="HHZ" locationCode="">
        <Latitude>40.5978</Latitude><Longitude>23.0995</Longitude><Elevation>925</Elevation><Depth>0</Depth>
      </Channel>
      <Channel code="HHN" locationCode="">
        <Latitude>40.5978</Latitude><Longitude>23.0995</Longitude><Elevation>925</Elevation><Depth>0</Depth>
      </Channel>
    </Station>
    <Station code="XOR">
      <Latitude>39.366</Latitude><Longitude>23.192</Longitude><Elevation>500</Elevation>
      <Channel code="HHZ" locationCode="">
        <Latitude>39.3</Latitude><Longitude>23.1</Longitude><Elevation>400</Elevation><Depth>0</Depth>
      </Channel>
      <Channel code="HHN" locationCode="">
        <Latitude>39.4</Latitude><Longitude>23.2</Longitude><Elevation>400</Elevation><Depth>0</Depth>
      </Channel>
    </Station>
    <Station code="NOCH">
      <Latitude>1</Latitude><Longitude>2</Longitude><Elevation>3</Elevation>
    </Station>
  </Network>
</FDSNStationXML>`

func TestParseQuakeML(t *testing.T) {
	events, err := ParseQuakeML(strings.NewReader(testQuakeML))
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "smi:local/event/1", first["public_id"])
	assert.Equal(t, "28.5", first["latitude"])
	assert.Equal(t, "-113.1", first["longitude"])
	assert.Equal(t, 13.0, first["depth_in_km"])
	assert.Equal(t, "2012-04-12T07:15:48.500000Z", first["origin_time"])
	assert.Equal(t, "-4.22e19", first["m_tt"], "preferred focal mechanism")
	assert.Equal(t, "GULF OF CALIFORNIA, Event 1", first["description"])

	second := events[1]
	assert.Equal(t, "11", second["latitude"], "derived origin wins")
	assert.Equal(t, 7.5, second["depth_in_km"])
	assert.NotContains(t, second, "description")
}

func TestParseQuakeML_Incomplete(t *testing.T) {
	noTensor := `<quakeml><eventParameters><event publicID="e">
	  <origin publicID="o"><time><value>2013-01-01T00:00:00Z</value></time></origin>
	  <focalMechanism publicID="f"/>
	</event></eventParameters></quakeml>`
	_, err := ParseQuakeML(strings.NewReader(noTensor))
	require.ErrorIs(t, err, errNoMomentTensor)

	noOrigin := `<quakeml><eventParameters><event publicID="e"/></eventParameters></quakeml>`
	_, err = ParseQuakeML(strings.NewReader(noOrigin))
	require.ErrorIs(t, err, errNoOrigin)

	_, err = ParseQuakeML(strings.NewReader("<nope>"))
	require.Error(t, err)
}

const mixedQuakeML = `<quakeml><eventParameters>
  <event publicID="smi:local/no-origin"/>
  <event publicID="smi:local/good">
    <origin publicID="smi:local/good/o">
      <time><value>2013-01-01T00:00:00Z</value></time>
      <latitude><value>10</value></latitude>
      <longitude><value>20</value></longitude>
      <depth><value>5000</value></depth>
    </origin>
    <focalMechanism publicID="smi:local/good/fm">
      <momentTensor>
        <tensor>
          <Mrr><value>1</value></Mrr><Mtt><value>2</value></Mtt><Mpp><value>3</value></Mpp>
          <Mrt><value>4</value></Mrt><Mrp><value>5</value></Mrp><Mtp><value>6</value></Mtp>
        </tensor>
      </momentTensor>
    </focalMechanism>
  </event>
  <event publicID="smi:local/no-tensor">
    <origin publicID="smi:local/no-tensor/o"><time><value>2013-01-01T00:00:00Z</value></time></origin>
    <focalMechanism publicID="smi:local/no-tensor/fm"/>
  </event>
</eventParameters></quakeml>`

func TestParseQuakeML_SkipsUnreadableEvents(t *testing.T) {
	events, err := ParseQuakeML(strings.NewReader(mixedQuakeML))
	require.Len(t, events, 1)
	assert.Equal(t, "smi:local/good", events[0]["public_id"])

	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, []int{1}, partial.Positions)
	require.Len(t, partial.Problems, 2)
	assert.ErrorIs(t, err, errNoOrigin)
	assert.ErrorIs(t, err, errNoMomentTensor)

	var ire *domain.InvalidRecordError
	require.ErrorAs(t, partial.Problems[1], &ire)
	assert.Equal(t, 2, ire.Index)
	assert.Contains(t, ire.Error(), "smi:local/no-tensor")
}

func TestPartialError_Merge(t *testing.T) {
	partial := &PartialError{
		Positions: []int{0, 2},
		Problems:  []error{&domain.InvalidRecordError{Source: "event", Index: 1, Err: errNoOrigin}},
	}
	addErr := &records.AddError{Source: "doc.xml", Problems: []error{
		&domain.InvalidRecordError{Source: "doc.xml", Index: 1, Field: "latitude", Err: assert.AnError},
	}}

	res, err := partial.Merge(records.AddResult{Added: 1, Rejected: 1}, addErr, "doc.xml")
	assert.Equal(t, records.AddResult{Added: 1, Rejected: 2}, res)

	var ae *records.AddError
	require.ErrorAs(t, err, &ae)
	require.Len(t, ae.Problems, 2)
	for i, want := range []int{1, 2} {
		var ire *domain.InvalidRecordError
		require.ErrorAs(t, ae.Problems[i], &ire)
		assert.Equal(t, want, ire.Index)
		assert.Equal(t, "doc.xml", ire.Source)
	}

	res, err = partial.Merge(records.AddResult{Added: 2}, nil, "doc.xml")
	assert.Equal(t, records.AddResult{Added: 2, Rejected: 1}, res)
	require.ErrorAs(t, err, &ae)
	assert.Len(t, ae.Problems, 1)
}

func TestParseStationXML(t *testing.T) {
	stations, err := ParseStationXML(strings.NewReader(testStationXML))
	require.NoError(t, err)
	require.Len(t, stations, 3)

	assert.Equal(t, map[string]any{
		"id": "HT.HORT", "latitude": 40.5978, "longitude": 23.0995,
		"elevation_in_m": 925.0, "local_depth_in_m": 0.0,
	}, stations[0])
	assert.Equal(t, map[string]any{
		"id": "HT.XOR", "latitude": 39.366, "longitude": 23.192, "elevation_in_m": 500.0,
	}, stations[1], "disagreeing channels fall back to the station")
	assert.Equal(t, "HT.NOCH", stations[2]["id"])
	assert.Equal(t, 3.0, stations[2]["elevation_in_m"])
}

func TestLoad_SniffsFormat(t *testing.T) {
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "stations.xml")
	jsonPath := filepath.Join(dir, "stations.json")
	require.NoError(t, os.WriteFile(xmlPath, []byte("\n  "+testStationXML), 0o600))
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"id": "BW.FURT"}, {"id": "BW.ALTM"}]`), 0o600))

	fromXML, err := LoadStations(xmlPath)
	require.NoError(t, err)
	assert.Len(t, fromXML, 3)

	fromJSON, err := LoadStations(jsonPath)
	require.NoError(t, err)
	assert.Len(t, fromJSON, 2)

	mixedPath := filepath.Join(dir, "events.xml")
	require.NoError(t, os.WriteFile(mixedPath, []byte(mixedQuakeML), 0o600))
	fromMixed, err := LoadEvents(mixedPath)
	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	assert.Len(t, fromMixed, 1)
	assert.Contains(t, err.Error(), "events.xml")

	_, err = LoadEvents(filepath.Join(dir, "missing.xml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.xml")
}

func TestIsXML(t *testing.T) {
	assert.True(t, IsXML([]byte("  <?xml version=\"1.0\"?>")))
	assert.False(t, IsXML([]byte(`{"a": 1}`)))
	assert.False(t, IsXML(nil))
}
