package export

import (
	"errors"
	"io"
	"time"

	"github.com/tkrajina/gpxgo/gpx"
)

var ErrEmptyTrack = errors.New("track has no points")

// TrackPoint is one logged position of a run.
type TrackPoint struct {
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	AltM     float64   `json:"alt_m"`
	SpeedKph float64   `json:"speed_kph"`
	At       time.Time `json:"at"`
}

// RunGPX writes pts as a single-segment GPX 1.1 track.
func RunGPX(w io.Writer, name string, pts []TrackPoint) error {
	if len(pts) == 0 {
		return ErrEmptyTrack
	}
	seg := gpx.GPXTrackSegment{Points: make([]gpx.GPXPoint, 0, len(pts))}
	for _, p := range pts {
		seg.Points = append(seg.Points, gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  p.Lat,
				Longitude: p.Lon,
				Elevation: *gpx.NewNullableFloat64(p.AltM),
			},
			Timestamp: p.At.UTC(),
		})
	}

	doc := gpx.GPX{
		Name:    name,
		Creator: "smartgoggles",
		Tracks: []gpx.GPXTrack{{
			Name:     name,
			Type:     "ski",
			Segments: []gpx.GPXTrackSegment{seg},
		}},
	}
	b, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ParseTrack reads the first track of a GPX document back into points.
func ParseTrack(b []byte) ([]TrackPoint, error) {
	doc, err := gpx.ParseBytes(b)
	if err != nil {
		return nil, err
	}
	var pts []TrackPoint
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				pts = append(pts, TrackPoint{
					Lat:  p.Latitude,
					Lon:  p.Longitude,
					AltM: p.Elevation.Value(),
					At:   p.Timestamp,
				})
			}
		}
		break
	}
	if len(pts) == 0 {
		return nil, ErrEmptyTrack
	}
	return pts, nil
}
